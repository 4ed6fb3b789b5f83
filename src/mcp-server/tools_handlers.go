// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/jira"
)

// myIssuesJQL is the fixed query template behind get_my_issues. It resolves
// correctly only because the backend derives currentUser() from the supplied
// credentials; the caller argument merely selects which credentials to use.
const myIssuesJQL = "assignee = currentUser() ORDER BY created DESC"

// issueResult wraps one Issue with the success discriminant every tool
// result carries.
type issueResult struct {
	jira.Issue
	Success bool `json:"success"`
}

// issueListResult wraps an ordered issue list with the success discriminant.
// A failed call never carries a partial list; Issues is empty on failure.
type issueListResult struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Issues  []jira.Issue `json:"issues"`
}

// acceptanceCriteriaResult is the payload of get_acceptance_criteria.
type acceptanceCriteriaResult struct {
	Success               bool    `json:"success"`
	Key                   string  `json:"key"`
	Summary               string  `json:"summary"`
	AcceptanceCriteria    *string `json:"acceptance_criteria"`
	HasAcceptanceCriteria bool    `json:"has_acceptance_criteria"`
}

// toolFailure builds the structured failure payload shared by every tool.
// Credential and backend errors are converted here instead of escaping the
// dispatch boundary as protocol faults.
func toolFailure(format string, v ...any) *mcp.CallToolResult {
	payload, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   fmt.Sprintf(format, v...),
	})
	return mcp.NewToolResultText(string(payload))
}

// toolSuccess marshals a success payload into a text result.
func toolSuccess(v any) *mcp.CallToolResult {
	payload, err := json.Marshal(v)
	if err != nil {
		return toolFailure("failed to encode result: %v", err)
	}
	return mcp.NewToolResultText(string(payload))
}

// resolveService resolves the caller's credentials and builds the backend
// service for this single call. The failure result is non-nil when resolution
// fails; no backend call is attempted in that case.
func resolveService(request mcp.CallToolRequest, deps *ToolDeps) (IssueService, string, *mcp.CallToolResult) {
	caller, err := request.RequireString("caller")
	if err != nil {
		return nil, "", toolFailure("caller parameter required: %v", err)
	}

	cred, err := deps.Resolver.Resolve(caller)
	if err != nil {
		return nil, "", toolFailure("credential resolution failed: %v", err)
	}

	return deps.Issues(cred), caller, nil
}

// handleGetIssue fetches a single issue by key and returns its normalized
// form with a success discriminant.
func handleGetIssue(ctx context.Context, request mcp.CallToolRequest, deps *ToolDeps) (*mcp.CallToolResult, error) {
	issueKey, err := request.RequireString("issue_key")
	if err != nil {
		return toolFailure("issue_key parameter required: %v", err), nil
	}

	svc, _, fail := resolveService(request, deps)
	if fail != nil {
		return fail, nil
	}

	ctx, cancel := context.WithTimeout(ctx, deps.timeout())
	defer cancel()

	issue, err := svc.Issue(ctx, issueKey)
	if err != nil {
		return toolFailure("failed to fetch issue %s: %v", issueKey, err), nil
	}

	return toolSuccess(issueResult{Issue: issue, Success: true}), nil
}

// handleSearchIssues runs a caller-supplied JQL query. The backend is
// authoritative for query syntax; malformed JQL surfaces as a backend error
// converted to a failure payload.
func handleSearchIssues(ctx context.Context, request mcp.CallToolRequest, deps *ToolDeps) (*mcp.CallToolResult, error) {
	jql, err := request.RequireString("jql")
	if err != nil {
		return toolFailure("jql parameter required: %v", err), nil
	}

	svc, _, fail := resolveService(request, deps)
	if fail != nil {
		return fail, nil
	}

	ctx, cancel := context.WithTimeout(ctx, deps.timeout())
	defer cancel()

	issues, err := svc.Search(ctx, jql)
	if err != nil {
		// Zero issues on failure, never the partial set fetched so far.
		return toolFailure("search failed: %v", err), nil
	}

	return toolSuccess(issueListResult{Success: true, Count: len(issues), Issues: issues}), nil
}

// handleGetMyIssues lists the caller's assigned issues via the fixed JQL
// template, newest first.
func handleGetMyIssues(ctx context.Context, request mcp.CallToolRequest, deps *ToolDeps) (*mcp.CallToolResult, error) {
	svc, caller, fail := resolveService(request, deps)
	if fail != nil {
		return fail, nil
	}

	ctx, cancel := context.WithTimeout(ctx, deps.timeout())
	defer cancel()

	issues, err := svc.Search(ctx, myIssuesJQL)
	if err != nil {
		return toolFailure("failed to fetch issues for %s: %v", caller, err), nil
	}

	return toolSuccess(issueListResult{Success: true, Count: len(issues), Issues: issues}), nil
}

// handleGetAcceptanceCriteria fetches one issue and reports its
// acceptance-criteria field with an explicit presence flag. A missing or
// undecodable field yields has_acceptance_criteria=false, not an error.
func handleGetAcceptanceCriteria(ctx context.Context, request mcp.CallToolRequest, deps *ToolDeps) (*mcp.CallToolResult, error) {
	issueKey, err := request.RequireString("issue_key")
	if err != nil {
		return toolFailure("issue_key parameter required: %v", err), nil
	}

	svc, _, fail := resolveService(request, deps)
	if fail != nil {
		return fail, nil
	}

	ctx, cancel := context.WithTimeout(ctx, deps.timeout())
	defer cancel()

	issue, err := svc.Issue(ctx, issueKey)
	if err != nil {
		return toolFailure("failed to fetch issue %s: %v", issueKey, err), nil
	}

	return toolSuccess(acceptanceCriteriaResult{
		Success:               true,
		Key:                   issue.Key,
		Summary:               issue.Summary,
		AcceptanceCriteria:    issue.AcceptanceCriteria,
		HasAcceptanceCriteria: issue.AcceptanceCriteria != nil,
	}), nil
}
