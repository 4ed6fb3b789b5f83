// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	mcptransport "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/internal/creds"
	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/logger"
)

// jsonRPCError represents a JSON-RPC 2.0 error object
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// jsonRPCResponse represents a JSON-RPC 2.0 response object
type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

// InMemoryTransport implements the [Official MCP SDK] mcp.Transport interface
// on top of a [mark3labs/mcp-go] in-process client, binding one in-process
// session to the shared server without network overhead.
//
// Each transport is one independent session: it holds its own context, its
// in-flight dispatches are aborted when the transport closes, and requests
// arriving after Close are rejected rather than queued. Multiple transports
// against the same server run concurrently without shared mutable state.
//
// [mark3labs/mcp-go]: https://pkg.go.dev/github.com/mark3labs/mcp-go
// [Official MCP SDK]: https://pkg.go.dev/github.com/modelcontextprotocol/go-sdk
type InMemoryTransport struct {
	client     *client.Client // mark3labs in-process client
	started    bool
	mu         sync.Mutex
	recvCh     chan []byte // channel for receiving messages (ReadMessage)
	sendCh     chan []byte // channel for sending messages (WriteMessage)
	ctx        context.Context
	cancel     context.CancelFunc
	sem        chan struct{}  // Semaphore to limit concurrency
	shutdownWg sync.WaitGroup // WaitGroup for in-flight dispatches
	processWg  sync.WaitGroup // WaitGroup for message processing loop
}

// NewInMemoryTransport creates a new in-memory transport bound to ctx.
// Closing the transport (or cancelling ctx) aborts every dispatch still in
// flight on this session only; sibling transports are unaffected.
func NewInMemoryTransport(ctx context.Context) *InMemoryTransport {
	ctx, cancel := context.WithCancel(ctx)
	return &InMemoryTransport{
		recvCh: make(chan []byte, 1),
		sendCh: make(chan []byte, 1),
		ctx:    ctx,
		cancel: cancel,
		sem:    make(chan struct{}, 100), // Limit to 100 concurrent requests
	}
}

// ReadMessage blocks until a message is available or the session is closed.
func (t *InMemoryTransport) ReadMessage() ([]byte, error) {
	select {
	case msg := <-t.recvCh:
		return msg, nil
	case <-t.ctx.Done():
		return nil, io.EOF
	}
}

// WriteMessage queues one inbound JSON-RPC message for dispatch. Messages
// written after Close are rejected with the session's context error.
func (t *InMemoryTransport) WriteMessage(data []byte) error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	select {
	case t.sendCh <- data:
		return nil
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}

// Close terminates the session. In-flight dispatches observe the cancelled
// context and abort; the processing loop drains before Close returns.
func (t *InMemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	// Wait for message processor to stop (no new tasks added)
	t.processWg.Wait()

	// Wait for active dispatches to finish
	t.shutdownWg.Wait()

	t.started = false
	return nil
}

// Connect implements the official SDK mcp.Transport interface.
func (t *InMemoryTransport) Connect(ctx context.Context) (mcptransport.Connection, error) {
	return &bridgeConnection{transport: t}, nil
}

// ConnectServer connects a mark3labs MCP server to this transport using an
// in-process client. This enables direct in-memory communication without
// process overhead, used by the chat client's in-process mode, the ADK
// integration, and the session tests.
func (t *InMemoryTransport) ConnectServer(ctx context.Context, srv *server.MCPServer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("transport already connected")
	}

	c, err := client.NewInProcessClient(srv)
	if err != nil {
		return fmt.Errorf("failed to create in-process client: %w", err)
	}
	t.client = c

	if err := t.client.Start(t.ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	// Start message processing goroutine
	t.processWg.Add(1)
	go t.processMessages()

	t.started = true
	return nil
}

// processMessages routes inbound JSON-RPC messages to the in-process client.
// Each request is handled on its own goroutine so a long-running tool call
// does not block other messages on the same session.
func (t *InMemoryTransport) processMessages() {
	defer t.processWg.Done()

	for {
		select {
		case <-t.ctx.Done():
			return
		case data := <-t.sendCh:
			select {
			case t.sem <- struct{}{}:
				t.shutdownWg.Add(1)
				go func(data []byte) {
					defer func() {
						<-t.sem
						t.shutdownWg.Done()
					}()
					t.dispatch(data)
				}(data)
			case <-t.ctx.Done():
				return
			}
		}
	}
}

// dispatch handles one JSON-RPC message end to end and sends the response,
// if any, back over the session stream.
func (t *InMemoryTransport) dispatch(data []byte) {
	var req map[string]any
	if err := json.Unmarshal(data, &req); err != nil {
		t.sendResponse(jsonRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      nil,
			Error:   &jsonRPCError{Code: -32700, Message: "Parse error"},
		})
		return
	}

	id := req["id"]
	method, ok := req["method"].(string)
	if !ok {
		if id != nil {
			t.sendResponse(jsonRPCResponse{
				JSONRPC: mcp.JSONRPC_VERSION,
				ID:      id,
				Error:   &jsonRPCError{Code: -32600, Message: fmt.Sprintf("invalid method: expected string, got %T", req["method"])},
			})
		}
		return
	}

	// Notifications require no response or action in this bridge.
	if method == "notifications/initialized" {
		return
	}

	result, err := t.invoke(req, method)

	// JSON-RPC 2.0: a Notification (request without ID) gets no reply.
	if id == nil {
		return
	}

	resp := jsonRPCResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: id}
	if err != nil {
		code := -32603
		resp.Error = &jsonRPCError{Code: code, Message: err.Error()}
	} else {
		resp.Result = result
	}
	t.sendResponse(resp)
}

// invoke maps one JSON-RPC method onto the in-process client. The bridge
// covers the session lifecycle and tool surface; the server registers no
// resources or prompts.
func (t *InMemoryTransport) invoke(req map[string]any, method string) (any, error) {
	switch method {
	case string(mcp.MethodInitialize):
		initParams, err := getParams(req, method)
		if err != nil {
			return nil, err
		}
		protocolVersion, err := getStringParam(initParams, method, "protocolVersion")
		if err != nil {
			return nil, err
		}
		initReq := mcp.InitializeRequest{
			Params: mcp.InitializeParams{ProtocolVersion: protocolVersion},
		}
		return t.client.Initialize(t.ctx, initReq)

	case string(mcp.MethodPing):
		if err := t.client.Ping(t.ctx); err != nil {
			return nil, err
		}
		return map[string]any{}, nil

	case string(mcp.MethodToolsList):
		return t.client.ListTools(t.ctx, mcp.ListToolsRequest{})

	case string(mcp.MethodToolsCall):
		callParams, err := getParams(req, method)
		if err != nil {
			return nil, err
		}
		name, err := getStringParam(callParams, method, "name")
		if err != nil {
			return nil, err
		}
		args, err := getMapParam(callParams, method, "arguments")
		if err != nil {
			return nil, err
		}
		callReq := mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: name, Arguments: args},
		}
		return t.client.CallTool(t.ctx, callReq)

	default:
		return nil, fmt.Errorf("method not supported: %s", method)
	}
}

// sendResponse sends a JSON-RPC response to the receive channel.
func (t *InMemoryTransport) sendResponse(resp any) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	select {
	case t.recvCh <- data:
	case <-t.ctx.Done():
		// Session closed, drop response
	}
}

// bridgeConnection adapts InMemoryTransport to the official SDK's
// Connection interface.
type bridgeConnection struct {
	transport *InMemoryTransport
}

// Read implements [mcptransport.Connection].
func (c *bridgeConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	data, err := c.transport.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg, err := jsonrpc.DecodeMessage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON-RPC message: %w", err)
	}
	return msg, nil
}

// Write implements [mcptransport.Connection].
func (c *bridgeConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return c.transport.WriteMessage(data)
}

// Close implements [mcptransport.Connection].
func (c *bridgeConnection) Close() error {
	return c.transport.Close()
}

// SessionID implements [mcptransport.Connection].
func (c *bridgeConnection) SessionID() string {
	return "in-memory-transport"
}

// TransportBuilder helps construct in-memory transports carrying a fully
// built server, for in-process integration scenarios (chat --inprocess, ADK,
// tests).
type TransportBuilder struct {
	serverBuilder *ServerBuilder
}

// NewTransportBuilder creates a new transport builder.
func NewTransportBuilder() *TransportBuilder {
	return &TransportBuilder{
		serverBuilder: NewServerBuilder(),
	}
}

// WithConfig sets the server configuration.
func (tb *TransportBuilder) WithConfig(config *Config) *TransportBuilder {
	tb.serverBuilder.WithConfig(config)
	return tb
}

// WithVersion sets the server version.
func (tb *TransportBuilder) WithVersion(version string) *TransportBuilder {
	tb.serverBuilder.WithVersion(version)
	return tb
}

// WithLogger sets the server logger.
func (tb *TransportBuilder) WithLogger(log logger.Logger) *TransportBuilder {
	tb.serverBuilder.WithLogger(log)
	return tb
}

// WithResolver sets the credential resolver.
func (tb *TransportBuilder) WithResolver(resolver creds.Resolver) *TransportBuilder {
	tb.serverBuilder.WithResolver(resolver)
	return tb
}

// WithIssueFactory sets the issue-service factory.
func (tb *TransportBuilder) WithIssueFactory(factory IssueServiceFactory) *TransportBuilder {
	tb.serverBuilder.WithIssueFactory(factory)
	return tb
}

// WithDefaultTools adds the default Jira issue tools.
func (tb *TransportBuilder) WithDefaultTools() *TransportBuilder {
	tb.serverBuilder.WithDefaultTools()
	return tb
}

// BuildInMemoryTransport builds the server and connects it to a fresh
// in-memory transport. Each call produces an independent session.
func (tb *TransportBuilder) BuildInMemoryTransport(ctx context.Context) (*InMemoryTransport, error) {
	srv, err := tb.serverBuilder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build server: %w", err)
	}

	transport := NewInMemoryTransport(ctx)
	if err := transport.ConnectServer(ctx, srv); err != nil {
		return nil, fmt.Errorf("failed to connect server to transport: %w", err)
	}
	return transport, nil
}
