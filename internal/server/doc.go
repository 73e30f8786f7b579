// Package server exposes panel extraction over HTTP and over MCP stdio.
//
// # HTTP
//
//	GET  /         {"Hello":"World"}
//	GET  /healthz  {"status": "ok", "version", "text_detection"}
//	POST /chapter  {"chapter_url": "..."} -> {"data": <extraction result>}
//
// POST /chapter downloads the chapter's page images into a fresh UUID-named
// folder under the work directory and runs the chapter extractor on it
// (contour-only, text kept, panels between 2% and 90% of the page). Errors are
// returned as {"error": {"code", "message", "data"}}: 400 for a missing or
// malformed URL, 502 when the download fails, 500 otherwise.
//
// # MCP
//
// The server also speaks JSON-RPC 2.0 over stdio, one request per line:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Tools:
//   - panels_extract_folder: extract every page of a local folder
//   - panels_extract_chapter: download a chapter and extract it
//   - panels_segment_image: segment one page, optionally with crops and an overlay
//
// Pages opened by panels_segment_image are kept in an in-memory cache for the
// lifetime of the process. Tool errors are JSON-RPC errors with code -32000.
// Logs go to stderr; stdout carries only protocol messages.
package server
