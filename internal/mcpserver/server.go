// Package mcpserver hosts the ATT&CK query engine as Model Context Protocol
// tools. It registers the four query tools on an mcp-go server and exposes
// the two transports the service supports: stdio for local integrations and
// SSE behind CORS for remote deployments.
package mcpserver

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"

	"github.com/alex-llm/attAck-mcp-server/internal/attackcore"
)

const (
	serverName    = "ATT&CK_Query_Service"
	serverVersion = "2.1"
)

// Config carries the optional pieces of a Server.
type Config struct {
	Logger *slog.Logger
	// Audit publishes per-request events when configured; nil disables it.
	Audit *AuditPublisher
}

// Server wires the query engine into an MCP tool server.
type Server struct {
	engine *attackcore.Engine
	mcp    *server.MCPServer
	logger *slog.Logger
	audit  *AuditPublisher
}

// New creates the MCP server and registers all tools.
func New(engine *attackcore.Engine, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: engine,
		logger: logger.With("component", "mcpserver"),
		audit:  cfg.Audit,
	}
	s.mcp = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout. All logging
// must go to stderr in this mode; the transport owns stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}

// SSEHandler returns the HTTP handler for the SSE transport, wrapped with
// the same permissive CORS policy the service has always shipped for
// development deployments.
func (s *Server) SSEHandler() http.Handler {
	sse := server.NewSSEServer(s.mcp)
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
	})
	return c.Handler(sse)
}
