// Package server implements the MCP (Model Context Protocol) server for the ID card editor.
//
// This package provides a JSON-RPC 2.0 server that exposes the photo edit
// pipeline and the undoable card document through the MCP protocol.
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
// Photo Operations:
//   - photo_load: Decode a photo, report natural and displayed size
//   - photo_default_crop: The centred crop the editor starts with
//   - photo_render: Preview or final render as base64 PNG
//
// Card Operations:
//   - card_get: Current card and undo/redo availability
//   - card_update: Change fields, one undo step per effective change
//   - card_set_photo: Final render placed on the card as a data URL
//   - card_undo, card_redo: Step through the card history
//
// # Previews
//
// Preview renders run on a latest-wins scheduler. Their responses may arrive
// out of order, and a preview overtaken by a newer one answers with
// superseded set instead of an image. Every other request is handled in the
// order it was read.
//
// # Card History
//
// The card history keeps up to Config.HistoryLimit past versions. Updates that
// leave the card unchanged add no step, and any new change discards the redo
// stack.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	cfg, err := server.ConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
