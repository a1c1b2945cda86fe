package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for local development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	order       map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		order:       make(map[string][]string),
	}
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

func (m *MemoryStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []Document
	for _, id := range m.order[collection] {
		doc := m.collections[collection][id]
		if matches(doc, q.Filters) {
			docs = append(docs, clone(doc))
		}
	}
	return applyQuery(docs, q), nil
}

func (m *MemoryStore) Count(ctx context.Context, collection string, filters ...Filter) (int, error) {
	docs, err := m.List(ctx, collection, Query{Filters: filters})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (m *MemoryStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	stored, err := normalize(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	stored["id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	m.collections[collection][id] = stored
	m.order[collection] = append(m.order[collection], id)
	return id, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) error {
	patch, err := normalize(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyUpdate(collection, id, patch)
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyDelete(collection, id)
}

func (m *MemoryStore) Batch() Batch {
	return &memoryBatch{store: m}
}

func (m *MemoryStore) applyUpdate(collection, id string, patch Document) error {
	doc, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return nil
}

func (m *MemoryStore) applyDelete(collection, id string) error {
	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	ids := m.order[collection]
	for i, v := range ids {
		if v == id {
			m.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

type memoryOp struct {
	collection string
	id         string
	patch      Document
	delete     bool
}

type memoryBatch struct {
	store *MemoryStore
	ops   []memoryOp
	err   error
}

func (b *memoryBatch) Update(collection, id string, fields Document) {
	patch, err := normalize(fields)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.ops = append(b.ops, memoryOp{collection: collection, id: id, patch: patch})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, memoryOp{collection: collection, id: id, delete: true})
}

// Commit checks every operation against the current state before applying any of them.
func (b *memoryBatch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := make(map[string]bool)
	for _, op := range b.ops {
		key := op.collection + "/" + op.id
		if _, ok := s.collections[op.collection][op.id]; !ok || deleted[key] {
			return fmt.Errorf("batch %s %s: %w", op.collection, op.id, ErrNotFound)
		}
		if op.delete {
			deleted[key] = true
		}
	}
	for _, op := range b.ops {
		if op.delete {
			_ = s.applyDelete(op.collection, op.id)
			continue
		}
		_ = s.applyUpdate(op.collection, op.id, op.patch)
	}
	return nil
}
