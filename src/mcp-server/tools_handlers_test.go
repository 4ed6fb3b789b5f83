// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/creds"
	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/jira"
)

// fakeIssueService records backend calls and serves canned responses.
type fakeIssueService struct {
	issues     map[string]jira.Issue
	searchHits []jira.Issue
	searchErr  error
	issueErr   error

	issueCalls  int
	searchCalls int
	lastJQL     string
}

func (f *fakeIssueService) Issue(ctx context.Context, key string) (jira.Issue, error) {
	f.issueCalls++
	if f.issueErr != nil {
		return jira.Issue{}, f.issueErr
	}
	issue, ok := f.issues[key]
	if !ok {
		return jira.Issue{}, &jira.BackendError{StatusCode: 404, Message: "issue not found"}
	}
	return issue, nil
}

func (f *fakeIssueService) Search(ctx context.Context, jql string) ([]jira.Issue, error) {
	f.searchCalls++
	f.lastJQL = jql
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchHits, nil
}

// fakeResolver maps a single caller to a credential and counts resolutions.
type fakeResolver struct {
	email string
	calls int
}

func (f *fakeResolver) Resolve(email string) (creds.Credential, error) {
	f.calls++
	if email != f.email {
		return creds.Credential{}, fmt.Errorf("%w: %s", creds.ErrNotFound, email)
	}
	return creds.Credential{Email: email, Token: "test-token"}, nil
}

func testDeps(svc *fakeIssueService, resolver creds.Resolver) *ToolDeps {
	config, _ := loadConfig("")
	return &ToolDeps{
		Config:   config,
		Resolver: resolver,
		Issues:   func(creds.Credential) IssueService { return svc },
	}
}

func callRequest(tool string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: tool, Arguments: args},
	}
}

func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var text string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text += tc.Text
		}
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("result is not JSON: %v (text: %s)", err, text)
	}
	return payload
}

func testIssue(key string) jira.Issue {
	return jira.Issue{
		Key:         key,
		Summary:     "Summary of " + key,
		Status:      "To Do",
		Assignee:    jira.DefaultAssignee,
		Created:     "2026-01-01T00:00:00.000+0000",
		Description: jira.DefaultDescription,
	}
}

func TestHandleGetIssue(t *testing.T) {
	svc := &fakeIssueService{issues: map[string]jira.Issue{"PROJ-1": testIssue("PROJ-1")}}
	deps := testDeps(svc, &fakeResolver{email: "alice@example.com"})

	result, err := handleGetIssue(context.Background(),
		callRequest("get_issue", map[string]any{"issue_key": "PROJ-1", "caller": "alice@example.com"}), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["success"] != true {
		t.Errorf("expected success=true, got %v", payload["success"])
	}
	if payload["key"] != "PROJ-1" {
		t.Errorf("expected key PROJ-1, got %v", payload["key"])
	}
}

func TestHandleGetIssue_BackendFailure(t *testing.T) {
	svc := &fakeIssueService{issues: map[string]jira.Issue{}}
	deps := testDeps(svc, &fakeResolver{email: "alice@example.com"})

	result, err := handleGetIssue(context.Background(),
		callRequest("get_issue", map[string]any{"issue_key": "PROJ-404", "caller": "alice@example.com"}), deps)
	if err != nil {
		t.Fatalf("backend failures must become payloads, not errors: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["success"] != false {
		t.Errorf("expected success=false, got %v", payload["success"])
	}
	if payload["error"] == nil || payload["error"] == "" {
		t.Error("expected error message in failure payload")
	}
}

func TestHandleGetIssue_MissingArguments(t *testing.T) {
	svc := &fakeIssueService{}
	resolver := &fakeResolver{email: "alice@example.com"}
	deps := testDeps(svc, resolver)

	result, err := handleGetIssue(context.Background(),
		callRequest("get_issue", map[string]any{"caller": "alice@example.com"}), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["success"] != false {
		t.Errorf("expected success=false for missing issue_key, got %v", payload["success"])
	}
	if svc.issueCalls != 0 {
		t.Errorf("expected no backend call, got %d", svc.issueCalls)
	}
}

func TestHandleTools_UnknownCaller(t *testing.T) {
	// Every tool fails the same way when the caller has no credentials:
	// structured failure payload, zero backend calls.
	handlers := map[string]struct {
		handler ToolHandler
		args    map[string]any
	}{
		"get_issue":               {handleGetIssue, map[string]any{"issue_key": "PROJ-1"}},
		"search_issues":           {handleSearchIssues, map[string]any{"jql": "project = PROJ"}},
		"get_my_issues":           {handleGetMyIssues, map[string]any{}},
		"get_acceptance_criteria": {handleGetAcceptanceCriteria, map[string]any{"issue_key": "PROJ-1"}},
	}

	for name, tt := range handlers {
		t.Run(name, func(t *testing.T) {
			svc := &fakeIssueService{}
			deps := testDeps(svc, &fakeResolver{email: "alice@example.com"})

			tt.args["caller"] = "stranger@example.com"
			result, err := tt.handler(context.Background(), callRequest(name, tt.args), deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			payload := resultPayload(t, result)
			if payload["success"] != false {
				t.Errorf("expected success=false, got %v", payload["success"])
			}
			if svc.issueCalls != 0 || svc.searchCalls != 0 {
				t.Errorf("expected zero backend calls, got issue=%d search=%d", svc.issueCalls, svc.searchCalls)
			}
		})
	}
}

func TestHandleSearchIssues(t *testing.T) {
	svc := &fakeIssueService{searchHits: []jira.Issue{testIssue("PROJ-2"), testIssue("PROJ-1")}}
	deps := testDeps(svc, &fakeResolver{email: "alice@example.com"})

	result, err := handleSearchIssues(context.Background(),
		callRequest("search_issues", map[string]any{"jql": "project = PROJ", "caller": "alice@example.com"}), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["success"] != true {
		t.Fatalf("expected success=true, got %v", payload["success"])
	}
	if payload["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", payload["count"])
	}
	if svc.lastJQL != "project = PROJ" {
		t.Errorf("expected query passed through verbatim, got %q", svc.lastJQL)
	}
}

func TestHandleSearchIssues_FailureCarriesNoIssues(t *testing.T) {
	svc := &fakeIssueService{searchErr: &jira.BackendError{StatusCode: 400, Message: "bad jql"}}
	deps := testDeps(svc, &fakeResolver{email: "alice@example.com"})

	result, err := handleSearchIssues(context.Background(),
		callRequest("search_issues", map[string]any{"jql": "(((", "caller": "alice@example.com"}), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["success"] != false {
		t.Errorf("expected success=false, got %v", payload["success"])
	}
	if _, ok := payload["issues"]; ok {
		t.Error("failure payload must not carry a partial issue list")
	}
}

func TestHandleGetMyIssues(t *testing.T) {
	svc := &fakeIssueService{searchHits: []jira.Issue{testIssue("PROJ-3")}}
	resolver := &fakeResolver{email: "alice@example.com"}
	deps := testDeps(svc, resolver)

	result, err := handleGetMyIssues(context.Background(),
		callRequest("get_my_issues", map[string]any{"caller": "alice@example.com"}), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["success"] != true {
		t.Fatalf("expected success=true, got %v", payload["success"])
	}
	if svc.lastJQL != myIssuesJQL {
		t.Errorf("expected fixed JQL %q, got %q", myIssuesJQL, svc.lastJQL)
	}
	if resolver.calls != 1 {
		t.Errorf("expected exactly one resolution, got %d", resolver.calls)
	}
}

func TestHandleGetAcceptanceCriteria(t *testing.T) {
	criteria := "Given a user\nWhen they log in"
	withAC := testIssue("PROJ-1")
	withAC.AcceptanceCriteria = &criteria

	tests := []struct {
		name         string
		issue        jira.Issue
		expectHasAC  bool
		expectValue  any
		expectSumKey string
	}{
		{
			name:         "criteria present",
			issue:        withAC,
			expectHasAC:  true,
			expectValue:  criteria,
			expectSumKey: "PROJ-1",
		},
		{
			name:         "criteria absent",
			issue:        testIssue("PROJ-2"),
			expectHasAC:  false,
			expectValue:  nil,
			expectSumKey: "PROJ-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeIssueService{issues: map[string]jira.Issue{tt.issue.Key: tt.issue}}
			deps := testDeps(svc, &fakeResolver{email: "alice@example.com"})

			result, err := handleGetAcceptanceCriteria(context.Background(),
				callRequest("get_acceptance_criteria", map[string]any{"issue_key": tt.issue.Key, "caller": "alice@example.com"}), deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			payload := resultPayload(t, result)
			if payload["success"] != true {
				t.Fatalf("expected success=true, got %v", payload["success"])
			}
			if payload["has_acceptance_criteria"] != tt.expectHasAC {
				t.Errorf("expected has_acceptance_criteria=%v, got %v", tt.expectHasAC, payload["has_acceptance_criteria"])
			}
			if payload["acceptance_criteria"] != tt.expectValue {
				t.Errorf("expected acceptance_criteria=%v, got %v", tt.expectValue, payload["acceptance_criteria"])
			}
			if payload["key"] != tt.expectSumKey {
				t.Errorf("expected key=%s, got %v", tt.expectSumKey, payload["key"])
			}
		})
	}
}

func TestResolveService_NotConfigured(t *testing.T) {
	svc := &fakeIssueService{}
	deps := testDeps(svc, creds.NewEnvResolver())

	t.Setenv(creds.EnvCredentials, "")
	t.Setenv(creds.EnvEmail, "")
	t.Setenv(creds.EnvAPIToken, "")

	result, err := handleGetMyIssues(context.Background(),
		callRequest("get_my_issues", map[string]any{"caller": "alice@example.com"}), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["success"] != false {
		t.Errorf("expected success=false when no credential source exists, got %v", payload["success"])
	}
	if errors.Is(creds.ErrNotConfigured, creds.ErrNotFound) {
		t.Error("sentinel errors must stay distinct")
	}
}
