package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/craftfolio-api/internal/docstore"
	"github.com/craftfolio-api/internal/models"
)

// MockDocStore is an in-memory implementation of docstore.Store. Every
// mutation broadcasts a full snapshot of the affected collection to its
// subscribers, mirroring the live-store contract.
type MockDocStore struct {
	mu          sync.Mutex
	seq         int
	collections map[string]*mockCollection

	CreateErr error
	GetErr    error
	UpdateErr error
	DeleteErr error
}

type mockCollection struct {
	order []string
	docs  map[string]docstore.Fields
	subs  []*mockSubscription
}

// NewMockDocStore creates an empty in-memory store
func NewMockDocStore() *MockDocStore {
	return &MockDocStore{collections: make(map[string]*mockCollection)}
}

func (m *MockDocStore) collection(path string) *mockCollection {
	coll, ok := m.collections[path]
	if !ok {
		coll = &mockCollection{docs: make(map[string]docstore.Fields)}
		m.collections[path] = coll
	}
	return coll
}

func splitDocPath(path string) (string, string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// Create inserts a document and notifies collection subscribers
func (m *MockDocStore) Create(ctx context.Context, path string, fields docstore.Fields) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return "", m.CreateErr
	}

	m.seq++
	id := fmt.Sprintf("doc-%d", m.seq)

	coll := m.collection(path)
	coll.order = append(coll.order, id)
	coll.docs[id] = copyFields(fields)

	m.broadcast(coll)
	return id, nil
}

// SeedDoc inserts a document with a caller-chosen id, for test setup
func (m *MockDocStore) SeedDoc(path, id string, fields docstore.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collection(path)
	if _, ok := coll.docs[id]; !ok {
		coll.order = append(coll.order, id)
	}
	coll.docs[id] = copyFields(fields)
	m.broadcast(coll)
}

// Get fetches a document by path
func (m *MockDocStore) Get(ctx context.Context, path string) (docstore.Fields, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	collPath, id := splitDocPath(path)
	coll, ok := m.collections[collPath]
	if !ok {
		return nil, models.ErrNotFound
	}
	fields, ok := coll.docs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyFields(fields), nil
}

// Update merges fields into an existing document
func (m *MockDocStore) Update(ctx context.Context, path string, fields docstore.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	collPath, id := splitDocPath(path)
	coll, ok := m.collections[collPath]
	if !ok {
		return models.ErrNotFound
	}
	doc, ok := coll.docs[id]
	if !ok {
		return models.ErrNotFound
	}

	for k, v := range fields {
		doc[k] = v
	}
	m.broadcast(coll)
	return nil
}

// Delete removes a document. Nested sub-collections are untouched.
func (m *MockDocStore) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	collPath, id := splitDocPath(path)
	coll, ok := m.collections[collPath]
	if !ok {
		return models.ErrNotFound
	}
	if _, ok := coll.docs[id]; !ok {
		return models.ErrNotFound
	}

	delete(coll.docs, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	m.broadcast(coll)
	return nil
}

// List returns the collection in insertion order
func (m *MockDocStore) List(ctx context.Context, path string) ([]docstore.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[path]
	if !ok {
		return []docstore.Document{}, nil
	}
	return coll.snapshot(), nil
}

// ToggleVote applies the atomic vote-toggle semantics in memory
func (m *MockDocStore) ToggleVote(ctx context.Context, path, voteField, oppositeField, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	collPath, id := splitDocPath(path)
	coll, ok := m.collections[collPath]
	if !ok {
		return models.ErrNotFound
	}
	doc, ok := coll.docs[id]
	if !ok {
		return models.ErrNotFound
	}

	votes := toStringSet(doc[voteField])
	if contains(votes, member) {
		votes = without(votes, member)
	} else {
		votes = append(votes, member)
	}
	doc[voteField] = votes
	doc[oppositeField] = without(toStringSet(doc[oppositeField]), member)

	m.broadcast(coll)
	return nil
}

// Subscribe registers a snapshot feed on a collection. The current
// snapshot is delivered immediately.
func (m *MockDocStore) Subscribe(ctx context.Context, path string) (docstore.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collection(path)
	sub := &mockSubscription{
		store: m,
		coll:  coll,
		ch:    make(chan []docstore.Document, 64),
	}
	coll.subs = append(coll.subs, sub)
	sub.ch <- coll.snapshot()
	return sub, nil
}

func (m *MockDocStore) broadcast(coll *mockCollection) {
	snap := coll.snapshot()
	for _, sub := range coll.subs {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

func (c *mockCollection) snapshot() []docstore.Document {
	docs := make([]docstore.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, docstore.Document{ID: id, Fields: copyFields(c.docs[id])})
	}
	return docs
}

type mockSubscription struct {
	store  *MockDocStore
	coll   *mockCollection
	ch     chan []docstore.Document
	closed bool
}

func (s *mockSubscription) Snapshots() <-chan []docstore.Document { return s.ch }

func (s *mockSubscription) Cancel() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func copyFields(fields docstore.Fields) docstore.Fields {
	out := make(docstore.Fields, len(fields))
	for k, v := range fields {
		if set, ok := v.([]string); ok {
			out[k] = append([]string{}, set...)
			continue
		}
		out[k] = v
	}
	return out
}

func toStringSet(v any) []string {
	set, _ := v.([]string)
	return append([]string{}, set...)
}

func contains(set []string, member string) bool {
	for _, m := range set {
		if m == member {
			return true
		}
	}
	return false
}

func without(set []string, member string) []string {
	out := set[:0]
	for _, m := range set {
		if m != member {
			out = append(out, m)
		}
	}
	return out
}
