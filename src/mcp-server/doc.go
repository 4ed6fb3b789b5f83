// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver provides the [MCP] server half of the Jira bridge.
// It exposes four issue-tracking tools over a persistent SSE session,
// resolves per-caller credentials before every backend call, and returns
// structured success/failure payloads instead of protocol faults.
// The package uses a builder pattern for server construction and an
// in-memory transport bridge for in-process clients and tests.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
