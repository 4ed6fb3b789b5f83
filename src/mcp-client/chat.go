// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpclient

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Chat runs the interactive loop: read a line, process it as a query, print
// the result, until EOF or a quit command.
//
// Errors from a single query are printed and the loop continues; only a
// cancelled context or closed input ends the session. The discovered tool
// catalog is rendered once at startup so the user can see what the model may
// call on their behalf.
func (c *Client) Chat(ctx context.Context, in io.Reader, out io.Writer) error {
	if c.session == nil {
		return fmt.Errorf("not connected")
	}

	fmt.Fprintln(out, "Connected to Jira MCP bridge. Available tools:")
	fmt.Fprintln(out)
	fmt.Fprint(out, c.renderCatalog())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Type your query, or 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") || strings.EqualFold(query, "exit") {
			break
		}

		response, err := c.ProcessQuery(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warnf("%v", err)
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, response)
	}
	return scanner.Err()
}

// renderCatalog formats the tool catalog as a markdown table.
func (c *Client) renderCatalog() string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Tool", "Description"})

	rows := make([][]string, 0, len(c.catalog))
	for _, t := range c.catalog {
		rows = append(rows, []string{t.Name, t.Description})
	}
	if err := table.Bulk(rows); err != nil {
		return ""
	}
	if err := table.Render(); err != nil {
		return ""
	}
	return buf.String()
}
