package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/recall/internal/core"
)

const timeLayout = time.RFC3339Nano

type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

func (r *MemoryRepo) Insert(ctx context.Context, mem core.NewMemory) (core.Memory, error) {
	vecBlob, err := serializeVector(mem.Embedding)
	if err != nil {
		return core.Memory{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO memories (id, owner_id, content, category, embedding, source_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, owner_id, content, category, embedding, source_message, created_at, updated_at`,
		mem.ID, mem.OwnerID, mem.Content, string(mem.Category), vecBlob, mem.SourceMessage,
		mem.CreatedAt.UTC().Format(timeLayout), mem.UpdatedAt.UTC().Format(timeLayout),
	)

	stored, err := scanMemory(row)
	if err != nil {
		return core.Memory{}, fmt.Errorf("failed to insert memory: %w", err)
	}
	return stored, nil
}

func (r *MemoryRepo) Match(ctx context.Context, q core.MatchQuery) ([]core.MatchRow, error) {
	vecBlob, err := serializeVector(q.Embedding)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, category, COALESCE(1 - vec_distance_cosine(embedding, ?), 0) AS similarity
		FROM memories
		WHERE owner_id = ? AND (? = '' OR category = ?)
		ORDER BY similarity DESC
		LIMIT ?`,
		vecBlob, q.OwnerID, string(q.Category), string(q.Category), q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("memory match failed: %w", err)
	}
	defer rows.Close()

	var matches []core.MatchRow
	for rows.Next() {
		var m core.MatchRow
		if err := rows.Scan(&m.ID, &m.Content, &m.Category, &m.Similarity); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory match failed: %w", err)
	}
	if matches == nil {
		matches = []core.MatchRow{}
	}
	return matches, nil
}

// GetByID returns the stored memory, or sql.ErrNoRows.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (core.Memory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, content, category, embedding, source_message, created_at, updated_at
		FROM memories WHERE id = ?`, id)
	return scanMemory(row)
}

func scanMemory(row *sql.Row) (core.Memory, error) {
	var (
		m                core.Memory
		category         string
		blob             []byte
		source           sql.NullString
		created, updated string
	)
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Content, &category, &blob, &source, &created, &updated); err != nil {
		return core.Memory{}, err
	}

	cat, err := core.ParseCategory(category)
	if err != nil {
		return core.Memory{}, err
	}
	m.Category = cat

	if m.Embedding, err = deserializeVector(blob); err != nil {
		return core.Memory{}, err
	}
	if source.Valid {
		s := source.String
		m.SourceMessage = &s
	}
	if m.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return core.Memory{}, fmt.Errorf("parse created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return core.Memory{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return m, nil
}
