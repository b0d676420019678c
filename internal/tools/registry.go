// ABOUTME: Tool descriptor type and the registry producing the full tool list
// ABOUTME: Shared argument decoding and result helpers for all handlers

package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

// Descriptor pairs an MCP tool definition with its handler.
type Descriptor struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Name returns the tool's classification key.
func (d Descriptor) Name() string { return d.Tool.Name }

// All returns every tool descriptor, unfiltered, in stable order.
func All(client *iterable.Client) []Descriptor {
	var out []Descriptor
	out = append(out, campaignTools(client)...)
	out = append(out, listTools(client)...)
	out = append(out, templateTools(client)...)
	out = append(out, userTools(client)...)
	out = append(out, eventTools(client)...)
	out = append(out, messagingTools(client)...)
	return out
}

// decodeArgs unmarshals the request arguments into a typed struct.
func decodeArgs(request mcp.CallToolRequest, v any) error {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("reading arguments: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// apiResult converts an upstream call outcome into an MCP tool result.
// Upstream failures become in-band tool errors rather than protocol errors
// so the assistant can read and react to them.
func apiResult(raw json.RawMessage, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
