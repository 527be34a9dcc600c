package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

// DocumentStore is an in-process app.DocumentStore. Values are stored in
// their JSON form, so callers see the same types a JSON-backed store returns.
type DocumentStore struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string]map[string]storedDoc
}

type storedDoc struct {
	seq  int64
	data map[string]any
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]map[string]storedDoc)}
}

func (s *DocumentStore) Get(_ context.Context, collection, id string) (app.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return app.Document{}, domain.ErrNotFound
	}
	return app.Document{ID: id, Data: clone(doc.data)}, nil
}

// List returns the collection in insertion order.
func (s *DocumentStore) List(ctx context.Context, collection string) ([]app.Document, error) {
	return s.Query(ctx, collection)
}

func (s *DocumentStore) Query(_ context.Context, collection string, filters ...app.Filter) ([]app.Document, error) {
	want := make([]any, len(filters))
	for i, f := range filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		want[i] = v
	}

	s.mu.RLock()
	type match struct {
		seq int64
		doc app.Document
	}
	matches := make([]match, 0, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		ok := true
		for i, f := range filters {
			if !reflect.DeepEqual(doc.data[f.Field], want[i]) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, match{seq: doc.seq, doc: app.Document{ID: id, Data: clone(doc.data)}})
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })
	out := make([]app.Document, len(matches))
	for i, m := range matches {
		out[i] = m.doc
	}
	return out, nil
}

func (s *DocumentStore) Set(_ context.Context, collection, id string, data map[string]any) error {
	norm, err := normalizeMap(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(collection, id, norm)
	return nil
}

func (s *DocumentStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into an existing document.
func (s *DocumentStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	norm, err := normalizeMap(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return domain.ErrNotFound
	}
	for k, v := range norm {
		doc.data[k] = v
	}
	return nil
}

// ArrayUnion appends each value not already present in the array field.
func (s *DocumentStore) ArrayUnion(_ context.Context, collection, id, field string, values ...any) error {
	norm := make([]any, 0, len(values))
	for _, v := range values {
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		norm = append(norm, nv)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return domain.ErrNotFound
	}
	current, _ := doc.data[field].([]any)
	for _, v := range norm {
		present := false
		for _, existing := range current {
			if reflect.DeepEqual(existing, v) {
				present = true
				break
			}
		}
		if !present {
			current = append(current, v)
		}
	}
	if current == nil {
		current = []any{}
	}
	doc.data[field] = current
	return nil
}

func (s *DocumentStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *DocumentStore) putLocked(collection, id string, data map[string]any) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]storedDoc)
		s.collections[collection] = docs
	}
	seq := docs[id].seq
	if _, exists := docs[id]; !exists {
		s.seq++
		seq = s.seq
	}
	docs[id] = storedDoc{seq: seq, data: data}
}

func normalizeMap(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func clone(data map[string]any) map[string]any {
	out, _ := normalizeMap(data)
	return out
}
