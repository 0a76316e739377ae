// Package server implements the MCP (Model Context Protocol) server that
// splits images into printable panels.
//
// This package provides a JSON-RPC 2.0 server that exposes the grid
// partitioning and export operations of the imaging package through the
// MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Each user action is one tool:
//   - image_load: Decode an image and describe it
//   - panel_partition: Page rectangles for given dimensions
//   - panel_process: Layout, preview sheet and cut-line overlay
//   - panel_download_page: One page as PNG (1-based, row-major)
//   - panel_download_pdf: All pages as one PDF
//   - panel_download_png: First page only, as PNG
//
// Images are passed with every call, either as a file path or as inline
// base64 data with a format hint. Omitted grid parameters take the
// configured defaults.
//
// # Request Scope
//
// The server keeps no state between calls. Every output is built in memory
// and returned base64-encoded in the response; nothing is written to disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, e.g. "margin too large for this grid: ..."
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
