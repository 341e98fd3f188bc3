package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alex-llm/attAck-mcp-server/internal/attackcore"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("query_technique",
		mcp.WithDescription("Query ATT&CK technique details by ID or search techniques by name"),
		mcp.WithString("technique_id",
			mcp.Description("Technique ID for an exact lookup, e.g. T1059.001. Takes priority over tech_name."),
		),
		mcp.WithString("tech_name",
			mcp.Description("Name fragment for a case-insensitive substring search over technique names."),
		),
	), s.handleQueryTechnique)

	s.mcp.AddTool(mcp.NewTool("query_mitigations",
		mcp.WithDescription("List the mitigations associated with an ATT&CK technique"),
		mcp.WithString("technique_id",
			mcp.Required(),
			mcp.Description("Technique ID, e.g. T1566."),
		),
	), s.handleQueryMitigations)

	s.mcp.AddTool(mcp.NewTool("query_detections",
		mcp.WithDescription("List the detecting data components for an ATT&CK technique"),
		mcp.WithString("technique_id",
			mcp.Required(),
			mcp.Description("Technique ID, e.g. T1566."),
		),
	), s.handleQueryDetections)

	s.mcp.AddTool(mcp.NewTool("list_tactics",
		mcp.WithDescription("List every ATT&CK tactic with its ID and description"),
	), s.handleListTactics)
}

func (s *Server) handleQueryTechnique(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	techniqueID := request.GetString("technique_id", "")
	techName := request.GetString("tech_name", "")

	start := time.Now()
	outcome, err := s.engine.QueryTechnique(ctx, techniqueID, techName)
	if err != nil {
		return s.failure(err)
	}

	event := AuditEvent{
		Tool:        "query_technique",
		TechniqueID: techniqueID,
		Query:       techName,
		Duration:    time.Since(start).String(),
	}
	switch {
	case outcome.Detail != nil:
		event.Found = true
		event.Results = 1
	case outcome.Search != nil:
		event.Found = outcome.Search.Count > 0
		event.Results = outcome.Search.Count
	}
	s.audit.Publish(ctx, event)

	return jsonResult(outcome.Body())
}

func (s *Server) handleQueryMitigations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	techniqueID := request.GetString("technique_id", "")

	start := time.Now()
	outcome, err := s.engine.QueryMitigations(ctx, techniqueID)
	if err != nil {
		return s.failure(err)
	}

	s.audit.Publish(ctx, AuditEvent{
		Tool:        "query_mitigations",
		TechniqueID: techniqueID,
		Found:       outcome.NotFound == nil,
		Results:     len(outcome.Mitigations),
		Duration:    time.Since(start).String(),
	})

	return jsonResult(outcome.Body())
}

func (s *Server) handleQueryDetections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	techniqueID := request.GetString("technique_id", "")

	start := time.Now()
	outcome, err := s.engine.QueryDetections(ctx, techniqueID)
	if err != nil {
		return s.failure(err)
	}

	s.audit.Publish(ctx, AuditEvent{
		Tool:        "query_detections",
		TechniqueID: techniqueID,
		Found:       outcome.NotFound == nil,
		Results:     len(outcome.Detections),
		Duration:    time.Since(start).String(),
	})

	return jsonResult(outcome.Body())
}

func (s *Server) handleListTactics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	tactics, err := s.engine.ListTactics(ctx)
	if err != nil {
		return s.failure(err)
	}

	s.audit.Publish(ctx, AuditEvent{
		Tool:     "list_tactics",
		Found:    true,
		Results:  len(tactics),
		Duration: time.Since(start).String(),
	})

	return jsonResult(tactics)
}

// failure translates the engine's error taxonomy into the host layer's two
// failure channels: missing parameters become a tool (client) error, and
// everything else, including a failed dataset load, becomes a protocol
// (server) error carrying the original fault for diagnostics.
func (s *Server) failure(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, attackcore.ErrMissingParameter) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.logger.Error("query failed", "error", err)
	return nil, fmt.Errorf("query failed: %w", err)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
