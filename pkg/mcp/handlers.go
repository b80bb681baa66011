package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ecosdacama/dreams/pkg/dreams"
	"github.com/ecosdacama/dreams/pkg/interpret"
)

// jsonResult serializes v as the tool's text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// idArgument reads a required positive integer id. JSON numbers arrive as float64.
func idArgument(request mcp.CallToolRequest) (int64, bool) {
	raw, ok := request.Params.Arguments["id"].(float64)
	if !ok || raw < 1 || raw != float64(int64(raw)) {
		return 0, false
	}
	return int64(raw), true
}

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Dreams MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_dreams"), nil
}

// RegisterAddDreamTool registers the add_dream tool.
func RegisterAddDreamTool(s *server.MCPServer, store *dreams.Store) {
	tool := mcp.NewTool("add_dream",
		mcp.WithDescription("Records a new dream. Date and time default to now."),
		mcp.WithString("description", mcp.Required(), mcp.Description("The dream narrative.")),
		mcp.WithString("title", mcp.Description("Optional title.")),
		mcp.WithString("date", mcp.Description("Date as DD/MM/YYYY.")),
		mcp.WithString("time", mcp.Description("Time as HH:MM (24-hour).")),
		mcp.WithString("interpretation", mcp.Description("Optional interpretation text.")),
	)
	s.AddTool(tool, addDreamHandler(store, nowFunc))
}

func addDreamHandler(store *dreams.Store, now func() dreams.Dream) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments
		description, ok := args["description"].(string)
		if !ok {
			return mcp.NewToolResultError("'description' parameter is required and must be a string."), nil
		}

		d := now()
		d.Description = description
		if title, ok := args["title"].(string); ok {
			d.Title = title
		}
		if date, ok := args["date"].(string); ok && date != "" {
			if !dreams.ValidDate(date) {
				return mcp.NewToolResultError(fmt.Sprintf("'date' must be DD/MM/YYYY, got %q.", date)), nil
			}
			d.Date = date
		}
		if tm, ok := args["time"].(string); ok && tm != "" {
			if !dreams.ValidTime(tm) {
				return mcp.NewToolResultError(fmt.Sprintf("'time' must be HH:MM, got %q.", tm)), nil
			}
			d.Time = tm
		}
		if interpretation, ok := args["interpretation"].(string); ok {
			d.Interpretation = interpretation
		}

		id, err := store.Insert(ctx, d)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save dream: %v", err)), nil
		}
		d.ID = id
		return jsonResult(d)
	}
}

// RegisterListDreamsTool registers the list_dreams tool.
func RegisterListDreamsTool(s *server.MCPServer, store *dreams.Store) {
	tool := mcp.NewTool("list_dreams",
		mcp.WithDescription("Lists every recorded dream, oldest first."),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := store.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list dreams: %v", err)), nil
		}
		return jsonResult(list)
	})
}

// RegisterGetDreamTool registers the get_dream tool.
func RegisterGetDreamTool(s *server.MCPServer, store *dreams.Store) {
	tool := mcp.NewTool("get_dream",
		mcp.WithDescription("Retrieves one dream by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Dream id.")),
	)
	s.AddTool(tool, getDreamHandler(store))
}

func getDreamHandler(store *dreams.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := idArgument(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a positive integer."), nil
		}
		d, err := store.Get(ctx, id)
		if errors.Is(err, dreams.ErrDreamNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Dream %d not found.", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get dream %d: %v", id, err)), nil
		}
		return jsonResult(d)
	}
}

// RegisterUpdateDreamTool registers the update_dream tool.
func RegisterUpdateDreamTool(s *server.MCPServer, store *dreams.Store) {
	tool := mcp.NewTool("update_dream",
		mcp.WithDescription("Updates fields of an existing dream. Omitted fields keep their value."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Dream id.")),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("description", mcp.Description("New narrative.")),
		mcp.WithString("date", mcp.Description("New date as DD/MM/YYYY.")),
		mcp.WithString("time", mcp.Description("New time as HH:MM.")),
		mcp.WithString("interpretation", mcp.Description("New interpretation text.")),
	)
	s.AddTool(tool, updateDreamHandler(store))
}

func updateDreamHandler(store *dreams.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := idArgument(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a positive integer."), nil
		}

		args := request.Params.Arguments
		if date, ok := args["date"].(string); ok && !dreams.ValidDate(date) {
			return mcp.NewToolResultError(fmt.Sprintf("'date' must be DD/MM/YYYY, got %q.", date)), nil
		}
		if tm, ok := args["time"].(string); ok && !dreams.ValidTime(tm) {
			return mcp.NewToolResultError(fmt.Sprintf("'time' must be HH:MM, got %q.", tm)), nil
		}

		d, err := store.Get(ctx, id)
		if errors.Is(err, dreams.ErrDreamNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Dream %d not found.", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get dream %d: %v", id, err)), nil
		}

		fields := map[string]*string{
			"title":          &d.Title,
			"description":    &d.Description,
			"date":           &d.Date,
			"time":           &d.Time,
			"interpretation": &d.Interpretation,
		}
		changed := false
		for name, field := range fields {
			if v, ok := args[name].(string); ok {
				*field = v
				changed = true
			}
		}
		if !changed {
			return mcp.NewToolResultError("No update fields provided (use title, description, date, time or interpretation)."), nil
		}

		n, err := store.Update(ctx, d)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update dream %d: %v", id, err)), nil
		}
		if n == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("Dream %d not found during update.", id)), nil
		}
		return jsonResult(d)
	}
}

// RegisterDeleteDreamTool registers the delete_dream tool.
func RegisterDeleteDreamTool(s *server.MCPServer, store *dreams.Store) {
	tool := mcp.NewTool("delete_dream",
		mcp.WithDescription("Permanently deletes a dream by id. Deleting a missing id is a no-op."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Dream id.")),
	)
	s.AddTool(tool, deleteDreamHandler(store))
}

func deleteDreamHandler(store *dreams.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := idArgument(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a positive integer."), nil
		}
		n, err := store.Delete(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete dream %d: %v", id, err)), nil
		}
		return jsonResult(map[string]any{"id": id, "deleted": n})
	}
}

// RegisterSearchDreamsTool registers the search_dreams tool.
func RegisterSearchDreamsTool(s *server.MCPServer, store *dreams.Store) {
	tool := mcp.NewTool("search_dreams",
		mcp.WithDescription("Finds dreams whose title or description contains the query (ASCII case-insensitive). An empty query returns every dream."),
		mcp.WithString("query", mcp.Description("Substring to look for.")),
	)
	s.AddTool(tool, searchDreamsHandler(store))
}

func searchDreamsHandler(store *dreams.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, _ := request.Params.Arguments["query"].(string)
		found, err := store.Search(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search dreams: %v", err)), nil
		}
		return jsonResult(found)
	}
}

// RegisterInterpretDreamTool registers the interpret_dream tool.
func RegisterInterpretDreamTool(s *server.MCPServer, store *dreams.Store, client *interpret.Client) {
	tool := mcp.NewTool("interpret_dream",
		mcp.WithDescription("Fetches an interpretation for a stored dream from the remote service and saves it on the dream."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Dream id.")),
	)
	s.AddTool(tool, interpretDreamHandler(store, client))
}

func interpretDreamHandler(store *dreams.Store, client *interpret.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := idArgument(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a positive integer."), nil
		}
		d, err := store.Get(ctx, id)
		if errors.Is(err, dreams.ErrDreamNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Dream %d not found.", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get dream %d: %v", id, err)), nil
		}

		text, err := client.Interpret(ctx, d.Description)
		if err != nil {
			return mcp.NewToolResultError(interpret.Message(err)), nil
		}

		d.Interpretation = text
		if _, err := store.Update(ctx, d); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Interpretation fetched but not saved: %v", err)), nil
		}
		return jsonResult(d)
	}
}
