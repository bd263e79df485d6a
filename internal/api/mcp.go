package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fayzullaev/resumebot/internal/memory"
)

// MCPDeps holds the memory collections the MCP tools search.
type MCPDeps struct {
	Memory MemoryReader
	KB     memory.Source
	CV     memory.Source
}

// NewMCPServer exposes the memory subsystem over MCP: semantic recall across
// both collections and a diagnostics snapshot.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"resumebot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("resumebot — semantic search over one person's CV and knowledge base."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("recall",
			mcp.WithDescription("Semantically search the CV corpus and knowledge base and return relevant fragments."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum results per collection (default 5)")),
		),
		mcpRecall(deps),
	)

	s.AddTool(
		mcp.NewTool("diagnostics",
			mcp.WithDescription("Report memory subsystem health: backend kind, collection sizes, search probe."),
		),
		mcpDiagnostics(deps),
	)

	return s
}

func mcpRecall(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 20 {
			limit = 20
		}

		type hit struct {
			Collection string  `json:"collection"`
			Text       string  `json:"text"`
			Score      float64 `json:"score"`
		}
		var hits []hit

		for _, src := range []struct {
			name string
			s    memory.Source
		}{{"cv", deps.CV}, {"kb", deps.KB}} {
			results, err := src.s.Query(ctx, query, limit)
			if err != nil {
				return mcpError(fmt.Sprintf("recall failed on %s: %v", src.name, err)), nil
			}
			for _, r := range results {
				hits = append(hits, hit{Collection: src.name, Text: r.Text, Score: r.Score})
			}
		}

		if len(hits) == 0 {
			return mcpText("[]"), nil
		}
		data, err := json.Marshal(hits)
		if err != nil {
			return mcpError(fmt.Sprintf("encoding results: %v", err)), nil
		}
		return mcpText(string(data)), nil
	}
}

func mcpDiagnostics(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpText(deps.Memory.Diagnostics(ctx)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
