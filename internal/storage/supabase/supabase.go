package supabase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"github.com/sandevgo/recall/internal/core"
)

// Schema holds the table and RPC definitions the repository expects.
//
//go:embed schema.sql
var Schema string

const (
	rpcAddMemory     = "add_memory"
	rpcMatchMemories = "match_memories"
)

var errEmptyResponse = errors.New("empty response from supabase")

// RPCClient is the part of the Supabase client the repository uses.
// Rpc returns the raw response body, or "" when the request failed.
type RPCClient interface {
	Rpc(name, count string, rpcBody interface{}) string
}

type MemoryRepo struct {
	client RPCClient
}

func NewMemoryRepo(client RPCClient) *MemoryRepo {
	return &MemoryRepo{client: client}
}

// Connect creates a Supabase client authenticated with the service role key.
func Connect(url, key string) (*MemoryRepo, error) {
	if url == "" || key == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY must be set")
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return NewMemoryRepo(client), nil
}

type addMemoryParams struct {
	ID            string    `json:"p_id"`
	OwnerID       string    `json:"p_owner_id"`
	Content       string    `json:"p_content"`
	Category      string    `json:"p_category"`
	Embedding     []float32 `json:"p_embedding"`
	SourceMessage *string   `json:"p_source_message"`
	CreatedAt     time.Time `json:"p_created_at"`
	UpdatedAt     time.Time `json:"p_updated_at"`
}

type matchMemoriesParams struct {
	Embedding      []float32 `json:"query_embedding"`
	OwnerID        string    `json:"match_owner_id"`
	Count          int       `json:"match_count"`
	FilterCategory *string   `json:"filter_category"`
}

type memoryRow struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Content       string          `json:"content"`
	Category      string          `json:"category"`
	Embedding     json.RawMessage `json:"embedding"`
	SourceMessage *string         `json:"source_message"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (r *MemoryRepo) Insert(ctx context.Context, mem core.NewMemory) (core.Memory, error) {
	if err := ctx.Err(); err != nil {
		return core.Memory{}, err
	}

	body, err := r.call(rpcAddMemory, addMemoryParams{
		ID:            mem.ID,
		OwnerID:       mem.OwnerID,
		Content:       mem.Content,
		Category:      string(mem.Category),
		Embedding:     mem.Embedding,
		SourceMessage: mem.SourceMessage,
		CreatedAt:     mem.CreatedAt.UTC(),
		UpdatedAt:     mem.UpdatedAt.UTC(),
	})
	if err != nil {
		return core.Memory{}, err
	}

	// A function returning a single row may come back as an object or a one-element array.
	var row memoryRow
	if bytes.HasPrefix(body, []byte("[")) {
		var rows []memoryRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return core.Memory{}, fmt.Errorf("decode %s: %w", rpcAddMemory, err)
		}
		if len(rows) != 1 {
			return core.Memory{}, fmt.Errorf("%s returned %d rows", rpcAddMemory, len(rows))
		}
		row = rows[0]
	} else if err := json.Unmarshal(body, &row); err != nil {
		return core.Memory{}, fmt.Errorf("decode %s: %w", rpcAddMemory, err)
	}

	return row.toMemory()
}

func (r *MemoryRepo) Match(ctx context.Context, q core.MatchQuery) ([]core.MatchRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := matchMemoriesParams{
		Embedding: q.Embedding,
		OwnerID:   q.OwnerID,
		Count:     q.Limit,
	}
	if q.Category != "" {
		c := string(q.Category)
		params.FilterCategory = &c
	}

	body, err := r.call(rpcMatchMemories, params)
	if err != nil {
		return nil, err
	}

	rows := []core.MatchRow{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rpcMatchMemories, err)
	}
	if rows == nil {
		rows = []core.MatchRow{}
	}
	return rows, nil
}

func (r *MemoryRepo) call(name string, params any) ([]byte, error) {
	raw := strings.TrimSpace(r.client.Rpc(name, "", params))
	if raw == "" {
		return nil, fmt.Errorf("%s: %w", name, errEmptyResponse)
	}

	body := []byte(raw)
	if bytes.HasPrefix(body, []byte("{")) {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" && apiErr.Code != "" {
			return nil, fmt.Errorf("%s: %s (%s)", name, apiErr.Message, apiErr.Code)
		}
	}
	return body, nil
}

func (row memoryRow) toMemory() (core.Memory, error) {
	cat, err := core.ParseCategory(row.Category)
	if err != nil {
		return core.Memory{}, err
	}
	embedding, err := parseVector(row.Embedding)
	if err != nil {
		return core.Memory{}, err
	}
	return core.Memory{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		Content:       row.Content,
		Category:      cat,
		Embedding:     embedding,
		SourceMessage: row.SourceMessage,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}, nil
}

// parseVector accepts pgvector's text form ("[1,2,3]") as well as a JSON array.
func parseVector(raw json.RawMessage) ([]float32, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err == nil {
		return vec, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	text = strings.Trim(strings.TrimSpace(text), "[]")
	if text == "" {
		return []float32{}, nil
	}

	parts := strings.Split(text, ",")
	vec = make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
