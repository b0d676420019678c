// ABOUTME: MCP stdio server exposing the filtered tool set to AI clients
// ABOUTME: Receives only pre-filtered descriptors; never sees the full registry

package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/iterable-tools/iterable-mcp/internal/tools"
)

// serverName is the MCP server identity advertised in the initialize
// handshake.
const serverName = "iterable-mcp"

// Config holds configuration for the MCP server.
type Config struct {
	Version string
	Tools   []tools.Descriptor // the filtered subset, not the full registry
	Logger  *slog.Logger
}

// Server wraps the MCP protocol server. It registers exactly the tool
// descriptors it is given; permission filtering happens upstream.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
	count  int
}

// New creates an MCP server serving the given tool descriptors.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, d := range cfg.Tools {
		s.AddTool(d.Tool, d.Handler)
	}

	return &Server{
		mcp:    s,
		logger: logger.With("component", "mcp"),
		count:  len(cfg.Tools),
	}
}

// ToolCount returns the number of registered tools (for startup logging).
func (s *Server) ToolCount() int { return s.count }

// ServeStdio runs the server on stdin/stdout until the client disconnects.
// All logging must go to stderr while this runs; stdout belongs to the
// protocol.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio", "tools", s.count)
	return server.ServeStdio(s.mcp)
}
