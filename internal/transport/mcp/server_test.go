package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/embedding"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/internal/storage/chromem"
)

type stubAI struct {
	reply string
	err   error
}

func (s stubAI) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	if s.err != nil {
		return core.Message{}, s.err
	}
	return core.Message{Role: core.RoleAssistant, Content: s.reply}, nil
}

func newTestServer(t *testing.T, ai core.AIProvider) *Server {
	t.Helper()

	repo := chromem.New()
	emb := embedding.NewProvider(embedding.NewHash(128), 128)
	store := memory.NewStore(repo, emb)
	searcher := memory.NewSearcher(repo, emb)
	pipeline := memory.NewPipeline(memory.NewExtractor(ai), store, searcher, 2)

	return NewServer(pipeline, "default-owner", 5, nil, nil)
}

func callRequest(name string, args map[string]any) mcpproto.CallToolRequest {
	req := mcpproto.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcpproto.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcpproto.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServer_AddAndSearch(t *testing.T) {
	s := newTestServer(t, stubAI{})
	ctx := context.Background()

	res, err := s.handleAddMemory(ctx, callRequest(ToolAddMemory, map[string]any{
		"content":  "User is allergic to penicillin",
		"category": "health",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var mem core.Memory
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &mem))
	assert.Equal(t, "default-owner", mem.OwnerID)
	assert.Equal(t, core.CategoryHealth, mem.Category)

	res, err = s.handleSearchMemories(ctx, callRequest(ToolSearchMemories, map[string]any{
		"query":    "penicillin allergy",
		"limit":    3,
		"category": "health",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var results []core.SearchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &results))
	require.Len(t, results, 1)
	assert.Equal(t, mem.ID, results[0].ID)

	// Another owner sees nothing.
	res, err = s.handleSearchMemories(ctx, callRequest(ToolSearchMemories, map[string]any{
		"query":    "penicillin allergy",
		"owner_id": "someone-else",
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, resultText(t, res))
}

func TestServer_Remember(t *testing.T) {
	s := newTestServer(t, stubAI{
		reply: `{"memories":[{"content":"User's name is Alice","category":"personal_info"}],"hasMemories":true}`,
	})
	ctx := context.Background()

	res, err := s.handleRemember(ctx, callRequest(ToolRemember, map[string]any{
		"message":  "Hi, I'm Alice",
		"owner_id": "alice",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out rememberResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Len(t, out.Stored, 1)
	assert.Equal(t, "alice", out.Stored[0].OwnerID)

	res, err = s.handleRecall(ctx, callRequest(ToolRecall, map[string]any{
		"query":    "what is the user's name",
		"owner_id": "alice",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "User's name is Alice")
}

func TestServer_ToolErrors(t *testing.T) {
	s := newTestServer(t, stubAI{err: errors.New("provider down")})
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error)
		args    map[string]any
	}{
		{name: "remember missing message", handler: s.handleRemember, args: map[string]any{}},
		{name: "remember generation failure", handler: s.handleRemember, args: map[string]any{"message": "hi"}},
		{name: "add unknown category", handler: s.handleAddMemory, args: map[string]any{"content": "x", "category": "mood"}},
		{name: "add blank content", handler: s.handleAddMemory, args: map[string]any{"content": " ", "category": "other"}},
		{name: "search missing query", handler: s.handleSearchMemories, args: map[string]any{}},
		{name: "search bad limit", handler: s.handleSearchMemories, args: map[string]any{"query": "q", "limit": 0}},
		{name: "search unknown category", handler: s.handleSearchMemories, args: map[string]any{"query": "q", "category": "mood"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.handler(ctx, callRequest("tool", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestServer_ListsTools(t *testing.T) {
	s := newTestServer(t, stubAI{})

	resp := s.mcp.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{ToolRemember, ToolAddMemory, ToolSearchMemories, ToolRecall} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
}
