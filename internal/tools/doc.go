// Package tools defines the MCP tool descriptors wrapping the Iterable API.
//
// Each descriptor pairs an MCP tool definition (name, description, input
// schema) with a handler performing a single upstream REST call. The
// registry produces the full, unfiltered list; capability filtering happens
// in the permissions package before anything reaches the protocol server.
//
// Tool names are the classification keys for permission filtering, so they
// are stable identifiers: renaming a tool silently changes what a
// restricted session can see.
package tools
