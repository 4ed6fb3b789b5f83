// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package jira implements a minimal client for the Jira REST API v2 and the
// normalization layer that converts raw backend records into the canonical
// Issue shape served by the MCP tools.
//
// The client covers exactly two operations, issue lookup by key and JQL
// search capped at 50 results. The normalizer decodes optional fields against
// a known schema and defaults absent values instead of failing; normalization
// problems degrade to missing data and are logged, never returned as errors.
package jira
