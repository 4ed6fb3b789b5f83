// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createTools creates and returns all MCP tool definitions with their handlers.
//
// The function defines the following tools:
//   - get_issue: Fetch details of a specific issue by key
//   - search_issues: Search issues with a JQL query, capped at 50 results
//   - get_my_issues: List issues assigned to the caller, newest first
//   - get_acceptance_criteria: Extract the acceptance-criteria field of an issue
//
// Every tool takes an explicit caller argument; credentials are resolved per
// call and never cached on a session, so reused transports cannot leak one
// caller's identity into another caller's requests.
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("get_issue",
				mcp.WithDescription("Get details of a specific Jira issue by key"),
				mcp.WithString("issue_key",
					mcp.Required(),
					mcp.Description("The Jira issue key (e.g., PROJ-123)"),
				),
				mcp.WithString("caller",
					mcp.Required(),
					mcp.Description("Email of the caller whose credentials authorize the request"),
				),
			),
			Handler: handleGetIssue,
		},
		{
			Tool: mcp.NewTool("search_issues",
				mcp.WithDescription("Search for Jira issues using JQL; returns at most 50 results in backend order"),
				mcp.WithString("jql",
					mcp.Required(),
					mcp.Description("Jira Query Language string; validity is judged by the backend"),
				),
				mcp.WithString("caller",
					mcp.Required(),
					mcp.Description("Email of the caller whose credentials authorize the request"),
				),
			),
			Handler: handleSearchIssues,
		},
		{
			Tool: mcp.NewTool("get_my_issues",
				mcp.WithDescription("Get issues assigned to the caller, sorted by creation date descending. "+
					"Uses the fixed query 'assignee = currentUser() ORDER BY created DESC'; the backend resolves "+
					"currentUser() from the caller's credentials, not from the caller argument"),
				mcp.WithString("caller",
					mcp.Required(),
					mcp.Description("Email of the caller whose credentials authorize the request"),
				),
			),
			Handler: handleGetMyIssues,
		},
		{
			Tool: mcp.NewTool("get_acceptance_criteria",
				mcp.WithDescription("Get the acceptance criteria of a specific Jira issue, with an explicit "+
					"has_acceptance_criteria flag"),
				mcp.WithString("issue_key",
					mcp.Required(),
					mcp.Description("The Jira issue key (e.g., PROJ-123)"),
				),
				mcp.WithString("caller",
					mcp.Required(),
					mcp.Description("Email of the caller whose credentials authorize the request"),
				),
			),
			Handler: handleGetAcceptanceCriteria,
		},
	}
}
