package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

// DocumentStore keeps schemaless documents as JSONB rows of the documents table.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (app.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2`, collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return app.Document{}, domain.ErrNotFound
	}
	if err != nil {
		return app.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decode(id, raw)
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]app.Document, error) {
	return s.Query(ctx, collection)
}

// Query matches equality filters with JSONB containment, in insertion order.
func (s *DocumentStore) Query(ctx context.Context, collection string, filters ...app.Filter) ([]app.Document, error) {
	match := make(map[string]any, len(filters))
	for _, f := range filters {
		match[f.Field] = f.Value
	}
	raw, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("encode filters: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection=$1 AND data @> $2::jsonb ORDER BY seq`,
		collection, string(raw))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []app.Document
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc, err := decode(id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`,
		collection, id, raw)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges top-level fields into an existing document.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encode(fields)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection=$1 AND id=$2`,
		collection, id, raw)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ArrayUnion appends, in one statement, the values not already present in
// the array field. A missing or non-array field starts out empty.
func (s *DocumentStore) ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error {
	raw, err := json.Marshal(distinct(values))
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	tag, err := s.pool.Exec(ctx, arrayUnionSQL, collection, id, field, string(raw))
	if err != nil {
		return fmt.Errorf("array union %s/%s.%s: %w", collection, id, field, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// arrayUnionSQL reads the current array from the row being updated, so a
// concurrent union is re-applied to the committed version.
const arrayUnionSQL = `
UPDATE documents d
SET data = jsonb_set(d.data, ARRAY[$3::text],
    (CASE WHEN jsonb_typeof(d.data -> ($3::text)) = 'array' THEN d.data -> ($3::text) ELSE '[]'::jsonb END)
    || COALESCE((
        SELECT jsonb_agg(v.value ORDER BY v.ord)
        FROM jsonb_array_elements($4::jsonb) WITH ORDINALITY AS v(value, ord)
        WHERE NOT EXISTS (
            SELECT 1
            FROM jsonb_array_elements(CASE WHEN jsonb_typeof(d.data -> ($3::text)) = 'array' THEN d.data -> ($3::text) ELSE '[]'::jsonb END) e
            WHERE e = v.value
        )
    ), '[]'::jsonb),
    true)
WHERE d.collection=$1 AND d.id=$2`

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func encode(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func decode(id string, raw []byte) (app.Document, error) {
	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return app.Document{}, fmt.Errorf("decode %s: %w", id, err)
	}
	return app.Document{ID: id, Data: data}, nil
}

// distinct drops repeated values; json.Marshal sorts map keys, so equal
// values encode identically.
func distinct(values []any) []any {
	seen := make(map[string]struct{}, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			out = append(out, v)
			continue
		}
		if _, dup := seen[string(raw)]; dup {
			continue
		}
		seen[string(raw)] = struct{}{}
		out = append(out, v)
	}
	return out
}
