// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpclient implements the conversational side of the bridge: an
// [MCP] client session against the tool server plus an [Anthropic] model
// loop that lets the model call those tools on the user's behalf.
//
// The package connects over SSE (or an in-memory transport for in-process
// use), discovers the advertised tool catalog once per session, converts it
// to the model API's tool schema, and then drives a bounded request loop:
// model turn, tool dispatch, tool results back to the model, until the model
// answers in plain text or the round limit is reached.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
// [Anthropic]: https://docs.anthropic.com/en/api/messages
package mcpclient
