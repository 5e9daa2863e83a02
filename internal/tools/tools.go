// Package tools defines the MCP tool surface. Each tool wraps one
// client operation and renders a stable JSON envelope so assistants can
// branch on status without parsing prose.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/3leaps/splunkmcp/pkg/splunk"
)

// SearchService is the slice of the client the tool layer depends on.
type SearchService interface {
	Search(ctx context.Context, req splunk.SearchRequest) (*splunk.SearchOutcome, error)
	ListIndexes(ctx context.Context, pattern string) ([]splunk.IndexInfo, error)
	ListSavedSearches(ctx context.Context, name, owner string) ([]splunk.SavedSearchInfo, error)
	ListApps(ctx context.Context, visibleOnly bool) ([]splunk.AppInfo, error)
	GetServerInfo(ctx context.Context) (*splunk.ServerInfo, error)
}

// Registry binds tool handlers to a service and registers them on an
// MCP server.
type Registry struct {
	svc    SearchService
	logger *zap.Logger
}

func NewRegistry(svc SearchService, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{svc: svc, logger: logger}
}

// RegisterAll adds every tool to srv.
func (r *Registry) RegisterAll(srv *mcpserver.MCPServer) {
	srv.AddTool(searchTool(), r.handleSearch)
	srv.AddTool(listIndexesTool(), r.handleListIndexes)
	srv.AddTool(listSavedSearchesTool(), r.handleListSavedSearches)
	srv.AddTool(listAppsTool(), r.handleListApps)
	srv.AddTool(serverInfoTool(), r.handleServerInfo)
}

func searchTool() mcp.Tool {
	return mcp.NewTool("splunk_search",
		mcp.WithDescription("Run a Splunk search and return matching events. "+
			"Blocks until the search finishes or the timeout elapses."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query in SPL. A leading 'search' command is added when missing.")),
		mcp.WithString("earliest_time",
			mcp.Description("Earliest event time, relative ('-24h@h') or absolute. Default -24h@h.")),
		mcp.WithString("latest_time",
			mcp.Description("Latest event time. Default now.")),
		mcp.WithNumber("max_count",
			mcp.Description("Maximum events to return, 1-10000. Default 100.")),
		mcp.WithNumber("timeout",
			mcp.Description("Seconds to wait for completion, 1-3600. Default 60.")),
	)
}

func (r *Registry) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sreq := splunk.SearchRequest{
		Query:        cast.ToString(args["query"]),
		EarliestTime: cast.ToString(args["earliest_time"]),
		LatestTime:   cast.ToString(args["latest_time"]),
		MaxCount:     cast.ToInt(args["max_count"]),
		Timeout:      cast.ToInt(args["timeout"]),
	}

	outcome, err := r.svc.Search(ctx, sreq)
	if err != nil {
		r.logger.Warn("search tool failed", zap.Error(err))
		return errorResult(err)
	}

	return successResult(map[string]any{
		"sid":          outcome.SID,
		"result_count": outcome.ResultCount,
		"truncated":    outcome.Truncated,
		"duration_s":   outcome.Duration.Seconds(),
		"results":      outcome.Results,
	})
}

func listIndexesTool() mcp.Tool {
	return mcp.NewTool("list_indexes",
		mcp.WithDescription("List the indexes visible to the configured credential."),
		mcp.WithString("pattern",
			mcp.Description("Optional glob filter on index names, e.g. '*security*'.")),
	)
}

func (r *Registry) handleListIndexes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern := cast.ToString(req.GetArguments()["pattern"])

	indexes, err := r.svc.ListIndexes(ctx, pattern)
	if err != nil {
		r.logger.Warn("list_indexes tool failed", zap.Error(err))
		return errorResult(err)
	}

	return successResult(map[string]any{
		"count":   len(indexes),
		"indexes": indexes,
	})
}

func listSavedSearchesTool() mcp.Tool {
	return mcp.NewTool("list_saved_searches",
		mcp.WithDescription("List saved searches, optionally filtered by name substring or owner."),
		mcp.WithString("name",
			mcp.Description("Case-insensitive substring filter on the saved search name.")),
		mcp.WithString("owner",
			mcp.Description("Restrict the listing to searches owned by this user.")),
	)
}

func (r *Registry) handleListSavedSearches(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	searches, err := r.svc.ListSavedSearches(ctx, cast.ToString(args["name"]), cast.ToString(args["owner"]))
	if err != nil {
		r.logger.Warn("list_saved_searches tool failed", zap.Error(err))
		return errorResult(err)
	}

	return successResult(map[string]any{
		"count":          len(searches),
		"saved_searches": searches,
	})
}

func listAppsTool() mcp.Tool {
	return mcp.NewTool("list_apps",
		mcp.WithDescription("List installed Splunk applications."),
		mcp.WithBoolean("visible_only",
			mcp.Description("When true, drop apps flagged invisible in the UI.")),
	)
}

func (r *Registry) handleListApps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	visibleOnly := cast.ToBool(req.GetArguments()["visible_only"])

	apps, err := r.svc.ListApps(ctx, visibleOnly)
	if err != nil {
		r.logger.Warn("list_apps tool failed", zap.Error(err))
		return errorResult(err)
	}

	return successResult(map[string]any{
		"count": len(apps),
		"apps":  apps,
	})
}

func serverInfoTool() mcp.Tool {
	return mcp.NewTool("server_info",
		mcp.WithDescription("Report version, build, and license state of the connected Splunk instance."),
	)
}

func (r *Registry) handleServerInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := r.svc.GetServerInfo(ctx)
	if err != nil {
		r.logger.Warn("server_info tool failed", zap.Error(err))
		return errorResult(err)
	}

	return successResult(map[string]any{
		"server_info": info,
	})
}

// successResult renders {"status":"success", ...fields} as the tool
// text content.
func successResult(fields map[string]any) (*mcp.CallToolResult, error) {
	body := make(map[string]any, len(fields)+1)
	body["status"] = "success"
	for k, v := range fields {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// errorResult renders the failure envelope. Domain errors keep their
// taxonomy kind and details; anything else is reported as a platform
// error.
func errorResult(err error) (*mcp.CallToolResult, error) {
	kind := string(splunk.KindPlatform)
	message := err.Error()
	var details map[string]any

	var serr *splunk.SearchError
	if errors.As(err, &serr) {
		kind = string(serr.Kind)
		message = serr.Message
		details = serr.Details
	}

	body := map[string]any{
		"status": "error",
		"error": map[string]any{
			"kind":    kind,
			"message": message,
		},
	}
	if len(details) > 0 {
		body["error"].(map[string]any)["details"] = details
	}
	raw, mErr := json.Marshal(body)
	if mErr != nil {
		return nil, fmt.Errorf("encode tool error: %w", mErr)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
