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
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/logger"
)

// defaultMaxToolRounds bounds how many model/tool round-trips one query may
// take. A model that keeps requesting tools past this limit gets cut off with
// whatever text has accumulated so far, so a single query can never spin
// tool calls indefinitely.
const defaultMaxToolRounds = 8

// messageCreator is the slice of the Anthropic API the query loop needs.
// Tests substitute a scripted implementation.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// anthropicCreator adapts the real SDK client to messageCreator.
type anthropicCreator struct {
	client *anthropic.Client
}

func (a *anthropicCreator) New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return a.client.Messages.New(ctx, params)
}

// ToolSummary is one row of the discovered tool catalog, used for display.
type ToolSummary struct {
	Name        string
	Description string
}

// Client couples one MCP session with one model conversation endpoint.
//
// A Client is built with New, connected with Connect or ConnectTransport,
// and then driven with ProcessQuery or Chat. It is not safe for concurrent
// queries; the chat loop issues them one at a time.
type Client struct {
	serverURL string
	session   *mcp.ClientSession
	creator   messageCreator
	model     anthropic.Model
	maxTokens int64
	tools     []anthropic.ToolUnionParam
	catalog   []ToolSummary
	log       logger.Logger
	maxRounds int
}

// New creates a client that will connect to the bridge server at serverURL
// and converse through the Anthropic API using ambient SDK configuration
// (ANTHROPIC_API_KEY).
func New(serverURL string, log logger.Logger) *Client {
	api := anthropic.NewClient()
	if log == nil {
		log = logger.NewCLILogger()
	}
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		creator:   &anthropicCreator{client: &api},
		model:     anthropic.ModelClaude3_7SonnetLatest,
		maxTokens: 1024,
		log:       log,
		maxRounds: defaultMaxToolRounds,
	}
}

// Connect establishes the SSE session against the server's /sse endpoint and
// discovers the tool catalog. Call Close when done.
func (c *Client) Connect(ctx context.Context) error {
	transport := &mcp.SSEClientTransport{Endpoint: c.serverURL + "/sse"}
	return c.ConnectTransport(ctx, transport)
}

// ConnectTransport establishes the session over an arbitrary transport, such
// as the in-memory bridge, and discovers the tool catalog.
func (c *Client) ConnectTransport(ctx context.Context, transport mcp.Transport) error {
	mcpClient := mcp.NewClient(&mcp.Implementation{
		Name:    "jira-mcp-bridge-client",
		Version: "1.0.0",
	}, nil)

	session, err := mcpClient.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to MCP server: %w", err)
	}
	c.session = session

	if err := c.discoverTools(ctx); err != nil {
		_ = session.Close()
		c.session = nil
		return err
	}
	return nil
}

// Close terminates the MCP session.
func (c *Client) Close() error {
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

// Tools returns the discovered tool catalog for display.
func (c *Client) Tools() []ToolSummary {
	return c.catalog
}

// toolSchema is the subset of a tool's JSON Schema the model API consumes.
type toolSchema struct {
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

// discoverTools lists the server's tools once per session and converts each
// advertised input schema into the model API's tool parameter shape.
func (c *Client) discoverTools(ctx context.Context) error {
	result, err := c.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	c.tools = c.tools[:0]
	c.catalog = c.catalog[:0]
	for _, tool := range result.Tools {
		schema, err := convertInputSchema(tool.InputSchema)
		if err != nil {
			return fmt.Errorf("failed to convert schema for tool %s: %w", tool.Name, err)
		}
		c.tools = append(c.tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema.Properties,
					Required:   schema.Required,
				},
			},
		})
		c.catalog = append(c.catalog, ToolSummary{
			Name:        tool.Name,
			Description: tool.Description,
		})
	}
	return nil
}

// convertInputSchema round-trips an advertised JSON Schema through its wire
// encoding into the flat properties/required shape the model API expects.
func convertInputSchema(schema any) (toolSchema, error) {
	var out toolSchema
	if schema == nil {
		return out, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

// callTool dispatches one tool call over the session and flattens the result
// content into the text handed back to the model. Failure payloads from the
// server arrive here as ordinary text results, not errors.
func (c *Client) callTool(ctx context.Context, name string, args json.RawMessage) (string, bool, error) {
	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return "", false, fmt.Errorf("failed to decode tool arguments: %w", err)
		}
	}

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		return "", false, fmt.Errorf("tool call %s failed: %w", name, err)
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n"), result.IsError, nil
}
