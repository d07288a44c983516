// Package tools implements the MCP tool surface of the trading gateway.
// Every handler returns a uniform envelope: a human-readable text block,
// optionally followed by a pretty-printed JSON payload. Failures come back
// as a single text block prefixed with "Error: " and the result flagged as
// an error, never as a Go error from the handler.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// successResult builds a two-part result: the message text, then data
// rendered as indented JSON. A nil data yields a message-only result.
func successResult(message string, data any) *mcp.CallToolResult {
	content := []mcp.Content{
		mcp.TextContent{Type: "text", Text: message},
	}
	if data != nil {
		content = append(content, mcp.TextContent{Type: "text", Text: marshalPayload(data)})
	}
	return &mcp.CallToolResult{Content: content}
}

// errorResult builds the uniform failure envelope.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: "Error: " + message},
		},
		IsError: true,
	}
}

func errorf(format string, args ...any) *mcp.CallToolResult {
	return errorResult(fmt.Sprintf(format, args...))
}

// marshalPayload renders data with two-space indentation and without HTML
// escaping, so contract names and symbols survive verbatim.
func marshalPayload(data any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Sprintf("(unrenderable payload: %v)", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}
