// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/tavla/internal/domain"
)

// Service is the board surface the MCP tools operate on.
type Service interface {
	Board() *domain.BoardData
	Refresh(ctx context.Context) error
	MoveTask(taskID, sourceColumnID, targetColumnID string) (domain.ChangeEvent, bool)
}

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing board tools.
func NewHandler(cfg Config, svc Service) (*Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, svc)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "tavla"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers the `tavla.*` board tools.
func registerBoardTools(srv *mcpserver.MCPServer, svc Service) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.get_board",
			mcp.WithDescription("Return the current board: tasks, columns, and column order."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := mcp.NewToolResultJSON(svc.Board())
			if err != nil {
				return nil, fmt.Errorf("encode get_board result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.move_task",
			mcp.WithDescription("Move one task from a source column to a target column."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("source_column_id", mcp.Required(), mcp.Description("Column the task currently sits in")),
			mcp.WithString("target_column_id", mcp.Required(), mcp.Description("Column the task should land in")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sourceID, err := req.RequireString("source_column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			targetID, err := req.RequireString("target_column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			event, moved := svc.MoveTask(taskID, sourceID, targetID)
			payload := map[string]any{"moved": moved}
			if moved {
				payload["event"] = event
			}
			result, err := mcp.NewToolResultJSON(payload)
			if err != nil {
				return nil, fmt.Errorf("encode move_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.refresh",
			mcp.WithDescription("Reload tasks from the record source and return the merged board."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := svc.Refresh(ctx); err != nil {
				return mcp.NewToolResultError("refresh_failed: " + err.Error()), nil
			}
			result, err := mcp.NewToolResultJSON(svc.Board())
			if err != nil {
				return nil, fmt.Errorf("encode refresh result: %w", err)
			}
			return result, nil
		},
	)
}
