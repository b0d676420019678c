// Package mcpserver runs the MCP protocol server over stdio, registering
// a pre-filtered set of tool descriptors.
package mcpserver
