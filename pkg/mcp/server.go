// Package mcp exposes report generation as Model Context Protocol tools over
// stdio and streamable HTTP.
package mcp

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/mcp/tools"
	"github.com/grocerydesk/grocery-console/pkg/services"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "grocery-console"

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance. Every tool call is logged
// through a ToolCallLogger.
func NewServer(name, version string, logger *zap.Logger) *Server {
	logger = logger.Named("mcp")
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithHooks(NewToolCallLogger(logger).Hooks()),
	)

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// NewReportServer creates a server with the health and report tools registered.
func NewReportServer(version string, reports services.ReportService, logger *zap.Logger) *Server {
	s := NewServer(ServerName, version, logger)
	tools.RegisterHealthTool(s.mcp, version)
	tools.RegisterReportTools(s.mcp, &tools.ReportToolDeps{
		Reports: reports,
		Logger:  s.logger,
	})
	return s
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The router handles the /mcp path, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// ServeStdio serves JSON-RPC over in/out until ctx is cancelled or in is closed.
// Nothing but protocol messages may be written to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, in, out)
}

// RegisterTool is a convenience wrapper for registering a tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}
