// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/creds"
	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/jira"
	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/logger"
)

// IssueService defines the backend operations a tool handler needs.
// The production implementation is *jira.Client; tests substitute fixtures.
//
// Methods:
//   - Issue: Fetch one normalized issue by key
//   - Search: Run a JQL query, returning at most jira.MaxSearchResults issues
type IssueService interface {
	Issue(ctx context.Context, key string) (jira.Issue, error)
	Search(ctx context.Context, jql string) ([]jira.Issue, error)
}

// IssueServiceFactory builds an IssueService bound to one caller's resolved
// credentials. A fresh service is created per tool call so credentials never
// leak across callers and no ambient client singleton exists.
type IssueServiceFactory func(cred creds.Credential) IssueService

// ToolDeps carries the per-server dependencies handed to every tool handler:
// configuration, the credential resolver, the issue-service factory, and the
// server logger. All fields are read-only after Build and safe for concurrent
// use across sessions.
type ToolDeps struct {
	Config   *Config
	Resolver creds.Resolver
	Issues   IssueServiceFactory
	Log      logger.Logger
}

// timeout returns the per-call backend timeout derived from configuration.
func (d *ToolDeps) timeout() time.Duration {
	if d.Config == nil || d.Config.Defaults.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.Config.Defaults.Timeout) * time.Second
}

// ToolHandler defines the signature for tool handlers. It extends the
// [MCP] server handler shape with the shared dependency bundle.
//
// Parameters:
//   - ctx: Context for cancellation and timeout handling
//   - request: The MCP tool call request containing arguments and metadata
//   - deps: Shared server dependencies (config, resolver, issue factory, logger)
//
// Returns:
//   - The tool execution result or an error if the tool failed
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, deps *ToolDeps) (*mcp.CallToolResult, error)

// ToolDefinition holds a tool definition and its handler.
// It pairs an MCP tool definition with its implementation function.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

// ServerBuilder helps construct the [MCP] server with proper dependencies
// using a fluent interface.
//
// Example:
//
//	s, err := NewServerBuilder().
//	    WithConfig(config).
//	    WithVersion("1.0.0").
//	    WithLogger(log).
//	    WithDefaultTools().
//	    Build()
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ServerBuilder struct {
	deps    ToolDeps
	version string
	tools   []ToolDefinition
}

// NewServerBuilder creates a new server builder with default empty dependencies.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithConfig sets the server configuration.
func (b *ServerBuilder) WithConfig(config *Config) *ServerBuilder {
	b.deps.Config = config
	return b
}

// WithVersion sets the server version string used for identification and
// User-Agent headers.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.version = version
	return b
}

// WithLogger sets the logger handed to handlers and the normalizer.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.deps.Log = log
	return b
}

// WithResolver sets the credential resolver. Defaults to the environment
// resolver when unset.
func (b *ServerBuilder) WithResolver(resolver creds.Resolver) *ServerBuilder {
	b.deps.Resolver = resolver
	return b
}

// WithIssueFactory sets the issue-service factory. Defaults to building a
// jira.Client per call against the configured backend address.
func (b *ServerBuilder) WithIssueFactory(factory IssueServiceFactory) *ServerBuilder {
	b.deps.Issues = factory
	return b
}

// WithTools adds tool definitions to the server.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.tools = append(b.tools, tools...)
	return b
}

// WithDefaultTools adds the default Jira issue tools to the server.
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	return b.WithTools(createTools()...)
}

// Build creates the [MCP] server with all configured dependencies.
//
// Missing optional dependencies get defaults: an environment-backed credential
// resolver, a per-call jira.Client factory, and a silent MCP logger. The tool
// catalog is registered once here and is identical for every session.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	if b.deps.Config == nil {
		config, err := loadConfig("")
		if err != nil {
			return nil, err
		}
		b.deps.Config = config
	}
	if b.deps.Log == nil {
		b.deps.Log = logger.NewMCPLogger(nil, true)
	}
	if b.deps.Resolver == nil {
		b.deps.Resolver = creds.NewEnvResolver()
	}
	if b.deps.Issues == nil {
		b.deps.Issues = defaultIssueFactory(b.deps.Config, b.version, b.deps.Log)
	}

	s := server.NewMCPServer(
		"Jira MCP Bridge",
		b.version,
		server.WithToolCapabilities(true),
	)

	deps := b.deps
	for _, tool := range b.tools {
		handler := tool.Handler
		s.AddTool(tool.Tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handler(ctx, request, &deps)
		})
	}

	return s, nil
}

// defaultIssueFactory builds jira clients bound to the configured backend
// address and the caller's resolved credential pair.
func defaultIssueFactory(config *Config, version string, log logger.Logger) IssueServiceFactory {
	timeout := time.Duration(config.Defaults.Timeout) * time.Second
	return func(cred creds.Credential) IssueService {
		return jira.NewClient(config.Jira.BaseURL, cred.Email, cred.Token, version, timeout, log)
	}
}
