// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli wires the bridge's entry points into a cobra command tree:
// serve runs the MCP tool server, chat runs the interactive model loop
// against a running server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpclient "github.com/H0llyW00dzZ/jira-mcp-bridge/src/mcp-client"
	mcpserver "github.com/H0llyW00dzZ/jira-mcp-bridge/src/mcp-server"

	"github.com/H0llyW00dzZ/jira-mcp-bridge/src/logger"
)

var (
	serverURL string
	inProcess bool
)

// Execute runs the root command, handling any errors that occur during execution.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	rootCmd := &cobra.Command{
		Use:     "jira-mcp-bridge",
		Short:   "Jira MCP bridge: issue tools over MCP plus a conversational client",
		Version: version,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server over SSE",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The server owns its own signal handling and shutdown.
			return mcpserver.Run(version, log)
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the model, letting it call the issue tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), version, log)
		},
	}
	chatCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8000", "bridge server base URL")
	chatCmd.Flags().BoolVar(&inProcess, "inprocess", false, "run the tool server in process instead of connecting over SSE")

	rootCmd.AddCommand(serveCmd, chatCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// runChat connects the conversational client to the configured server and
// hands the terminal over to the chat loop. With --inprocess the tool server
// runs inside this process over the in-memory transport, so no listener is
// needed.
func runChat(ctx context.Context, version string, log logger.Logger) error {
	c := mcpclient.New(serverURL, log)

	if inProcess {
		transport, err := mcpserver.NewTransportBuilder().
			WithVersion(version).
			WithLogger(log).
			WithDefaultTools().
			BuildInMemoryTransport(ctx)
		if err != nil {
			return err
		}
		if err := c.ConnectTransport(ctx, transport); err != nil {
			return err
		}
	} else if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	return c.Chat(ctx, os.Stdin, os.Stdout)
}
