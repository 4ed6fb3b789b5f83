// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// ProcessQuery sends one user query through the model and resolves any tool
// calls the model makes against the MCP session.
//
// The loop alternates model turns with tool dispatch: each model response is
// scanned for tool_use blocks; every requested tool is called over the
// session and its output is returned to the model as a tool_result; the loop
// ends when a response contains no tool_use blocks or the round limit is hit.
// The returned text interleaves the model's prose with one "[calling tool X]"
// marker per dispatched call, in conversation order.
//
// A tool whose result carries a failure payload is still a successful
// dispatch; the model sees the payload and decides how to proceed. Only
// transport-level errors abort the query.
func (c *Client) ProcessQuery(ctx context.Context, query string) (string, error) {
	if c.session == nil {
		return "", fmt.Errorf("not connected")
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
	}

	var out strings.Builder
	for round := 0; round < c.maxRounds; round++ {
		msg, err := c.creator.New(ctx, anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			Messages:  messages,
			Tools:     c.tools,
		})
		if err != nil {
			return "", fmt.Errorf("model request failed: %w", err)
		}

		var toolResults []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch v := block.AsAny().(type) {
			case anthropic.TextBlock:
				if out.Len() > 0 {
					out.WriteString("\n")
				}
				out.WriteString(v.Text)
			case anthropic.ToolUseBlock:
				if out.Len() > 0 {
					out.WriteString("\n")
				}
				fmt.Fprintf(&out, "[calling tool %s]", v.Name)

				content, isError, err := c.callTool(ctx, v.Name, json.RawMessage(v.JSON.Input.Raw()))
				if err != nil {
					return "", err
				}
				toolResults = append(toolResults, anthropic.NewToolResultBlock(v.ID, content, isError))
			}
		}

		if len(toolResults) == 0 {
			return out.String(), nil
		}

		messages = append(messages, msg.ToParam())
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	// Round limit reached with tool calls still pending. Return what the
	// model said so far rather than silently looping.
	return out.String(), nil
}
