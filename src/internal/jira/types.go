// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jira

import "encoding/json"

// Issue is the canonical normalized record describing one backend work item.
//
// Key, Summary, and Status are non-empty on every successfully normalized
// issue. Optional fields use pointer types so they serialize as explicit JSON
// nulls when absent, letting callers distinguish "field absent" from "field
// not requested".
type Issue struct {
	Key                string  `json:"key"`
	Summary            string  `json:"summary"`
	Status             string  `json:"status"`
	Assignee           string  `json:"assignee"`
	Created            string  `json:"created"`
	Description        string  `json:"description"`
	IssueType          *string `json:"issuetype"`
	Priority           *string `json:"priority"`
	Sprint             *string `json:"sprint"`
	AcceptanceCriteria *string `json:"acceptance_criteria"`
}

// Defaults applied by the normalizer for nullable required-presence fields.
const (
	DefaultAssignee    = "Unassigned"
	DefaultDescription = "No description"
)

// acceptanceCriteriaField is the rich-text custom field this deployment
// stores acceptance criteria in; its varying encodings are decoded by the
// normalizer. The sprint field (customfield_10020) has a fixed shape and is
// decoded directly through its rawFields tag.
const acceptanceCriteriaField = "customfield_10100"

// rawIssue mirrors the wire shape of GET /rest/api/2/issue/{key}.
type rawIssue struct {
	Key    string    `json:"key"`
	Fields rawFields `json:"fields"`
}

// rawFields holds the subset of issue fields the bridge consumes. Nullable
// backend fields are pointers; the two custom fields stay raw because their
// encodings vary across deployments.
type rawFields struct {
	Summary            string          `json:"summary"`
	Status             *namedEntity    `json:"status"`
	Assignee           *userEntity     `json:"assignee"`
	Created            string          `json:"created"`
	Description        *string         `json:"description"`
	IssueType          *namedEntity    `json:"issuetype"`
	Priority           *namedEntity    `json:"priority"`
	Sprint             []namedEntity   `json:"customfield_10020"`
	AcceptanceCriteria json.RawMessage `json:"customfield_10100"`
}

// namedEntity is the {"name": ...} shape Jira uses for status, issue type,
// priority, and sprint entries.
type namedEntity struct {
	Name string `json:"name"`
}

// userEntity is the user shape; only the display name is consumed.
type userEntity struct {
	DisplayName string `json:"displayName"`
}

// rawSearchResponse mirrors the wire shape of GET /rest/api/2/search.
type rawSearchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []rawIssue `json:"issues"`
}
