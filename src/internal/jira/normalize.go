// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/logger"
)

// Normalizer converts raw backend issue records into the canonical Issue
// shape. It never fails for missing optional fields: absence maps to a
// default or an absent sentinel, and any internal error during extraction is
// swallowed, logged, and surfaced as "absent" rather than aborting the
// enclosing tool call.
type Normalizer struct {
	log logger.Logger
}

// NewNormalizer creates a normalizer that reports degraded extractions to the
// given logger. A nil logger suppresses diagnostics.
func NewNormalizer(log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.NewMCPLogger(nil, true)
	}
	return &Normalizer{log: log}
}

// Normalize produces the canonical Issue for one raw backend record.
//
// Nullable display fields default (assignee to "Unassigned", description to
// "No description"); optional fields stay nil when the backend omits them.
// The created timestamp is preserved in the backend's own format.
func (n *Normalizer) Normalize(raw rawIssue) Issue {
	issue := Issue{
		Key:         raw.Key,
		Created:     raw.Fields.Created,
		Summary:     raw.Fields.Summary,
		Assignee:    DefaultAssignee,
		Description: DefaultDescription,
	}

	if raw.Fields.Status != nil {
		issue.Status = raw.Fields.Status.Name
	}
	if raw.Fields.Assignee != nil && raw.Fields.Assignee.DisplayName != "" {
		issue.Assignee = raw.Fields.Assignee.DisplayName
	}
	if raw.Fields.Description != nil && *raw.Fields.Description != "" {
		issue.Description = *raw.Fields.Description
	}
	if raw.Fields.IssueType != nil {
		name := raw.Fields.IssueType.Name
		issue.IssueType = &name
	}
	if raw.Fields.Priority != nil {
		name := raw.Fields.Priority.Name
		issue.Priority = &name
	}
	if len(raw.Fields.Sprint) > 0 {
		name := raw.Fields.Sprint[0].Name
		issue.Sprint = &name
	}

	issue.AcceptanceCriteria = n.extractAcceptanceCriteria(raw.Key, raw.Fields.AcceptanceCriteria)

	return issue
}

// extractAcceptanceCriteria decodes the rich-text acceptance-criteria field.
//
// Three encodings are handled, in order:
//  1. a plain string, trimmed;
//  2. a document exposing a content collection, whose non-empty items are
//     joined with newline separators;
//  3. any other scalar, coerced to a string and trimmed.
//
// A nil result means the field is absent. Decode errors never propagate; they
// are logged and the field degrades to absent.
func (n *Normalizer) extractAcceptanceCriteria(key string, raw json.RawMessage) *string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	// Encoding 1: plain string.
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return nonEmpty(strings.TrimSpace(plain))
	}

	// Encoding 2: rich-text document with a content collection. Any JSON
	// object takes this path; an object without recoverable text yields
	// absent rather than falling through to coercion.
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		var doc contentDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			n.log.Warnf("jira: dropping malformed %s on %s: %v", acceptanceCriteriaField, key, err)
			return nil
		}
		items := make([]string, 0, len(doc.Content))
		for _, node := range doc.Content {
			if text := strings.TrimSpace(node.gatherText()); text != "" {
				items = append(items, text)
			}
		}
		return nonEmpty(strings.Join(items, "\n"))
	}

	// Encoding 3: opaque scalar coerced to a string.
	var scalar any
	if err := json.Unmarshal(raw, &scalar); err != nil {
		n.log.Warnf("jira: dropping malformed %s on %s: %v", acceptanceCriteriaField, key, err)
		return nil
	}
	return nonEmpty(strings.TrimSpace(fmt.Sprintf("%v", scalar)))
}

// contentDocument is the minimal slice of the Atlassian document format
// needed to recover readable text from rich-text custom fields.
type contentDocument struct {
	Content []contentNode `json:"content"`
}

// contentNode is one node of a rich-text document tree.
type contentNode struct {
	Text    string        `json:"text"`
	Content []contentNode `json:"content"`
}

// gatherText concatenates the text of a node and all its descendants.
func (c contentNode) gatherText() string {
	var b strings.Builder
	b.WriteString(c.Text)
	for _, child := range c.Content {
		b.WriteString(child.gatherText())
	}
	return b.String()
}

// nonEmpty returns a pointer to s, or nil when s is empty.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
