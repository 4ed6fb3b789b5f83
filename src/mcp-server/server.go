// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/logger"
	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/version"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
//
// The version is initially set to the default from the version package,
// but can be overridden when calling Run() with a specific version string.
func GetVersion() string {
	return appVersion
}

// Run starts the MCP server with the Jira issue tools over an SSE transport.
//
// Run loads the configuration, builds the server through ServerBuilder, and
// serves three routes: /sse (session stream), /message (per-session request
// channel), and /health (liveness, independent of any session).
//
// Parameters:
//   - ver: Version string to set for the server (e.g., "0.3.1")
//   - log: Logger for lifecycle and diagnostic output
//
// Server Lifecycle:
//  1. Load configuration from JIRA_MCP_CONFIG_FILE / environment
//  2. Build MCP server using ServerBuilder with the default tool catalog
//  3. Mount SSE, message, and health handlers
//  4. Serve until an error or SIGINT/SIGTERM
//  5. Drain with a bounded shutdown so open sessions close cleanly
//
// Credential configuration is deliberately not validated here: a missing
// credential source fails the affected tool call, not the process.
func Run(ver string, log logger.Logger) error {
	// Set the version for GetVersion
	appVersion = ver

	// Load configuration
	config, err := loadConfig(os.Getenv(EnvConfigFile))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Build MCP server using ServerBuilder for better testability
	s, err := NewServerBuilder().
		WithConfig(config).
		WithVersion(ver).
		WithLogger(log).
		WithDefaultTools().
		Build()
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	httpServer := newHTTPServer(s, config.Server.Address)

	log.Printf("Jira MCP bridge %s listening on %s", ver, config.Server.Address)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		// Graceful shutdown triggered by signal
		log.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}

// newHTTPServer wires the SSE transport and the session-independent health
// route onto one listener, mirroring the /sse + /message + /health layout the
// bridge exposes.
func newHTTPServer(s *server.MCPServer, addr string) *http.Server {
	sse := server.NewSSEServer(s,
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
	)

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())
	mux.HandleFunc("/health", handleHealth)

	return &http.Server{Addr: addr, Handler: mux}
}

// handleHealth reports liveness. The response is fixed and independent of any
// session or backend state.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"healthy"}`)
}
