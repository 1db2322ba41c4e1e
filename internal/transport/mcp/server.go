package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"strings"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/pkg/log"
)

const (
	ToolRemember       = "remember"
	ToolAddMemory      = "add_memory"
	ToolSearchMemories = "search_memories"
	ToolRecall         = "recall"

	maxSearchLimit = 50
)

// Server exposes the memory pipeline as MCP tools over stdio.
type Server struct {
	pipeline     *memory.Pipeline
	defaultOwner string
	searchLimit  int

	mcp *server.MCPServer
	in  io.Reader
	out io.Writer
}

func NewServer(pipeline *memory.Pipeline, defaultOwner string, searchLimit int, in io.Reader, out io.Writer) *Server {
	s := &Server{
		pipeline:     pipeline,
		defaultOwner: defaultOwner,
		searchLimit:  searchLimit,
		in:           in,
		out:          out,
	}

	s.mcp = server.NewMCPServer(
		core.AppName,
		core.AppVersion,
		server.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	ownerOpt := mcpproto.WithString("owner_id",
		mcpproto.Description("Owner of the memories; defaults to the server's configured owner"),
	)

	categories := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		categories = append(categories, string(c))
	}

	s.mcp.AddTool(mcpproto.NewTool(ToolRemember,
		mcpproto.WithDescription("Extract durable facts about the user from a message and store them"),
		mcpproto.WithString("message", mcpproto.Required(), mcpproto.Description("Raw user message")),
		ownerOpt,
	), s.handleRemember)

	s.mcp.AddTool(mcpproto.NewTool(ToolAddMemory,
		mcpproto.WithDescription("Store one categorised fact about the user"),
		mcpproto.WithString("content", mcpproto.Required(), mcpproto.Description("The fact, phrased about the user")),
		mcpproto.WithString("category", mcpproto.Required(), mcpproto.Enum(categories...)),
		ownerOpt,
	), s.handleAddMemory)

	s.mcp.AddTool(mcpproto.NewTool(ToolSearchMemories,
		mcpproto.WithDescription("Find the user's memories most relevant to a query"),
		mcpproto.WithString("query", mcpproto.Required()),
		mcpproto.WithNumber("limit", mcpproto.Description("Maximum number of results")),
		mcpproto.WithString("category", mcpproto.Enum(categories...), mcpproto.Description("Only search this category")),
		ownerOpt,
	), s.handleSearchMemories)

	s.mcp.AddTool(mcpproto.NewTool(ToolRecall,
		mcpproto.WithDescription("Return relevant memories as a markdown block ready to paste into a prompt"),
		mcpproto.WithString("query", mcpproto.Required()),
		ownerOpt,
	), s.handleRecall)
}

func (s *Server) Start(ctx context.Context) error {
	ctx, logger := log.WithComponent(ctx, "mcp")
	logger.Info().Msg("mcp server listening on stdio")

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(stdlog.New(logger, "", 0))

	if err := stdio.Listen(ctx, s.in, s.out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Server) owner(req mcpproto.CallToolRequest) string {
	if o := strings.TrimSpace(req.GetString("owner_id", "")); o != "" {
		return o
	}
	return s.defaultOwner
}

type rememberResult struct {
	Candidates []core.Candidate `json:"candidates"`
	Stored     []core.Memory    `json:"stored"`
	Duplicates int              `json:"duplicates"`
	Failed     int              `json:"failed"`
	Error      string           `json:"error,omitempty"`
}

func (s *Server) handleRemember(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	report, err := s.pipeline.Capture(ctx, s.owner(req), message)
	if err != nil && len(report.Stored) == 0 {
		return toolError(ctx, ToolRemember, err), nil
	}

	res := rememberResult{
		Candidates: report.Candidates,
		Stored:     report.Stored,
		Duplicates: report.Duplicates,
		Failed:     report.Failed,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return jsonResult(res)
}

func (s *Server) handleAddMemory(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("category")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	category, err := core.ParseCategoryInput(raw)
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	mem, err := s.pipeline.Adder().AddMemory(ctx, s.owner(req), content, category)
	if err != nil {
		return toolError(ctx, ToolAddMemory, err), nil
	}
	return jsonResult(mem)
}

func (s *Server) handleSearchMemories(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	limit := req.GetInt("limit", s.searchLimit)
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	var opts []memory.SearchOption
	if raw := req.GetString("category", ""); raw != "" {
		category, err := core.ParseCategoryInput(raw)
		if err != nil {
			return mcpproto.NewToolResultError(err.Error()), nil
		}
		opts = append(opts, memory.WithCategory(category))
	}

	results, err := s.pipeline.Searcher().SearchMemories(ctx, s.owner(req), query, limit, opts...)
	if err != nil {
		return toolError(ctx, ToolSearchMemories, err), nil
	}
	return jsonResult(results)
}

func (s *Server) handleRecall(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return mcpproto.NewToolResultText(s.pipeline.Recall(ctx, s.owner(req), query, s.searchLimit)), nil
}

func toolError(ctx context.Context, tool string, err error) *mcpproto.CallToolResult {
	if !errors.Is(err, core.ErrInvalidMemoryInput) && !errors.Is(err, core.ErrInvalidSearchInput) {
		log.FromCtx(ctx).Error().Err(err).Str("tool", tool).Msg("tool call failed")
	}
	return mcpproto.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcpproto.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcpproto.NewToolResultText(string(data)), nil
}
