// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/mergegrid/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

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

// NewHandler builds one stateless MCP adapter exposing the grid tools.
func NewHandler(cfg Config, grid common.GridService) (*Handler, error) {
	if grid == nil {
		return nil, fmt.Errorf("grid service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerStateTools(mcpSrv, grid)
	registerSelectionTools(mcpSrv, grid)
	registerActionTools(mcpSrv, grid)

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
		cfg.ServerName = "mergegrid"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerStateTools registers read-only `mergegrid.get_state` and `mergegrid.list_events`.
func registerStateTools(srv *mcpserver.MCPServer, grid common.GridService) {
	srv.AddTool(
		mcp.NewTool(
			"mergegrid.get_state",
			mcp.WithDescription("Return the grid dimensions, current selection, merge groups, and visible layout."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return stateResult("get_state")(grid.State(ctx))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"mergegrid.list_events",
			mcp.WithDescription("List recent grid activity, newest last."),
			mcp.WithNumber("limit", mcp.Description("Maximum events to return (0 returns all retained)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			events, err := grid.Events(ctx, req.GetInt("limit", 50))
			if err != nil {
				return toolResultFromError(err), nil
			}
			if events == nil {
				events = []common.ChangeEvent{}
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"events": events,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_events result: %w", err)
			}
			return result, nil
		},
	)
}

// registerSelectionTools registers `mergegrid.select` and `mergegrid.clear`.
func registerSelectionTools(srv *mcpserver.MCPServer, grid common.GridService) {
	srv.AddTool(
		mcp.NewTool(
			"mergegrid.select",
			mcp.WithDescription("Select a rectangular range by A1 notation or by zero-based corners; the range grows until no merged cell is cut."),
			mcp.WithString("range", mcp.Description("A1 range such as B2:C4 or a single cell such as C3")),
			mcp.WithNumber("from_row", mcp.Description("Zero-based row of the first corner")),
			mcp.WithNumber("from_col", mcp.Description("Zero-based column of the first corner")),
			mcp.WithNumber("to_row", mcp.Description("Zero-based row of the second corner (defaults to from_row)")),
			mcp.WithNumber("to_col", mcp.Description("Zero-based column of the second corner (defaults to from_col)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			in := common.SelectRequest{Range: req.GetString("range", "")}
			if strings.TrimSpace(in.Range) == "" {
				fromRow, err := req.RequireInt("from_row")
				if err != nil {
					return mcp.NewToolResultError("invalid_request: range or from_row/from_col is required"), nil
				}
				fromCol, err := req.RequireInt("from_col")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				in.From = &common.CellRef{Row: fromRow, Col: fromCol}
				in.To = &common.CellRef{
					Row: req.GetInt("to_row", fromRow),
					Col: req.GetInt("to_col", fromCol),
				}
			}
			return stateResult("select")(grid.Select(ctx, in))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"mergegrid.clear",
			mcp.WithDescription("Drop the current selection."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return stateResult("clear")(grid.Clear(ctx))
		},
	)
}

// registerActionTools registers `mergegrid.merge`, `mergegrid.separate`, and `mergegrid.reset`.
func registerActionTools(srv *mcpserver.MCPServer, grid common.GridService) {
	srv.AddTool(
		mcp.NewTool(
			"mergegrid.merge",
			mcp.WithDescription("Merge the selected range into one spanning cell."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return stateResult("merge")(grid.Merge(ctx))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"mergegrid.separate",
			mcp.WithDescription("Split every merged cell inside the selected range back into unit cells."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return stateResult("separate")(grid.Separate(ctx))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"mergegrid.reset",
			mcp.WithDescription("Replace the grid with a fresh unmerged grid; sizes above the configured maximum are clamped."),
			mcp.WithNumber("width", mcp.Required(), mcp.Description("Number of columns")),
			mcp.WithNumber("height", mcp.Required(), mcp.Description("Number of rows")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			width, err := req.RequireInt("width")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			height, err := req.RequireInt("height")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return stateResult("reset")(grid.Reset(ctx, common.ResetRequest{Width: width, Height: height}))
		},
	)
}

// stateResult returns an encoder for one state-or-error service result.
func stateResult(tool string) func(common.GridState, error) (*mcp.CallToolResult, error) {
	return func(state common.GridState, err error) (*mcp.CallToolResult, error) {
		if err != nil {
			return toolResultFromError(err), nil
		}
		result, err := mcp.NewToolResultJSON(state)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", tool, err)
		}
		return result, nil
	}
}

// toolResultFromError maps adapter errors into MCP tool error results.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrNoSelection):
		return mcp.NewToolResultError("no_selection: " + err.Error())
	case errors.Is(err, common.ErrConflict):
		return mcp.NewToolResultError("not_merge_closed: " + err.Error())
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrServiceUnavailable):
		return mcp.NewToolResultError("service_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
