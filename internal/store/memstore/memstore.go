// internal/store/memstore/memstore.go

// Package memstore is an in-memory store.Backend used in tests and as a
// throwaway dev backend. It keeps per-collection insertion order so
// ListAll is deterministic, and supports scripted fault injection.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"studytrack/internal/store"
)

// Op identifies a backend operation for fault injection and call logs.
type Op string

const (
	OpList    Op = "list"
	OpInsert  Op = "insert"
	OpPut     Op = "put"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpListAll Op = "listall"
)

// Call is one recorded backend invocation.
type Call struct {
	Op         Op
	Collection string
	ID         string
}

type failure struct {
	kind    store.ErrorKind
	remains int
}

// Store is the in-memory backend.
type Store struct {
	mu    sync.Mutex
	docs  map[string]map[string]store.Fields
	order map[string][]string
	calls []Call

	failOps map[string]*failure          // keyed op|collection
	failIDs map[string]store.ErrorKind   // keyed op|collection|id, one-shot
	now     func() time.Time
}

// New creates an empty in-memory backend.
func New() *Store {
	return &Store{
		docs:    make(map[string]map[string]store.Fields),
		order:   make(map[string][]string),
		failOps: make(map[string]*failure),
		failIDs: make(map[string]store.ErrorKind),
		now:     time.Now,
	}
}

// SetClock overrides the clock used to resolve server timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNext makes the next n calls of op on collection fail with kind.
func (s *Store) FailNext(op Op, collection string, n int, kind store.ErrorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOps[string(op)+"|"+collection] = &failure{kind: kind, remains: n}
}

// FailID makes the next call of op addressing id fail with kind, once.
func (s *Store) FailID(op Op, collection, id string, kind store.ErrorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failIDs[string(op)+"|"+collection+"|"+id] = kind
}

// Calls returns the recorded invocations in order.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Count returns the number of documents in a collection.
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

// Seed inserts a document with a fixed id, bypassing fault injection.
func (s *Store) Seed(collection, id string, fields store.Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(collection, id, store.CloneFields(fields))
}

func (s *Store) putLocked(collection, id string, fields store.Fields) {
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]store.Fields)
	}
	if _, exists := s.docs[collection][id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	s.docs[collection][id] = fields
}

func (s *Store) injectLocked(op Op, collection, id string) error {
	if id != "" {
		key := string(op) + "|" + collection + "|" + id
		if kind, ok := s.failIDs[key]; ok {
			delete(s.failIDs, key)
			return store.NewError(kind, string(op), collection, fmt.Errorf("injected failure for %s", id))
		}
	}
	if f := s.failOps[string(op)+"|"+collection]; f != nil && f.remains > 0 {
		f.remains--
		return store.NewError(f.kind, string(op), collection, fmt.Errorf("injected failure"))
	}
	return nil
}

func (s *Store) begin(op Op, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: op, Collection: collection, ID: id})
	return s.injectLocked(op, collection, id)
}

func (s *Store) List(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	if err := s.begin(OpList, collection, ""); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]store.Document, 0)
	for _, id := range s.order[collection] {
		doc := store.Document{ID: id, Fields: store.CloneFields(s.docs[collection][id])}
		if q.MatchesOwner(doc) {
			docs = append(docs, doc)
		}
	}
	if q.OrderBy != "" {
		store.SortDocuments(docs, q.OrderBy, q.Desc)
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields store.Fields) (string, error) {
	if err := s.begin(OpInsert, collection, ""); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	id := uuid.NewString()
	s.putLocked(collection, id, f)
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := s.begin(OpPut, collection, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	s.putLocked(collection, id, f)
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := s.begin(OpUpdate, collection, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[collection][id]
	if !ok {
		return store.NewError(store.KindNotFound, "update", collection, fmt.Errorf("no document %s", id))
	}
	patch := store.CloneFields(fields)
	store.ResolveTimestamps(patch, s.now())
	for k, v := range patch {
		existing[k] = v
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.begin(OpDelete, collection, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[collection][id]; !ok {
		return store.NewError(store.KindNotFound, "delete", collection, fmt.Errorf("no document %s", id))
	}
	delete(s.docs[collection], id)
	for i, oid := range s.order[collection] {
		if oid == id {
			s.order[collection] = append(s.order[collection][:i], s.order[collection][i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context, collection string, fn func(store.Document) error) error {
	if err := s.begin(OpListAll, collection, ""); err != nil {
		return err
	}
	s.mu.Lock()
	ids := make([]string, len(s.order[collection]))
	copy(ids, s.order[collection])
	snapshot := make([]store.Fields, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, store.CloneFields(s.docs[collection][id]))
	}
	s.mu.Unlock()

	for i, id := range ids {
		if ctx.Err() != nil {
			return store.NewError(store.KindUnavailable, "listall", collection, ctx.Err())
		}
		if err := fn(store.Document{ID: id, Fields: snapshot[i]}); err != nil {
			return err
		}
	}
	return nil
}
