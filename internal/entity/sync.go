// internal/entity/sync.go
package entity

import (
	"context"
	"fmt"
	"sync"

	"studytrack/internal/common/logger"
	"studytrack/internal/models"
	"studytrack/internal/store"
)

// Sync keeps a session-local cache of one owner's records. Every write
// goes to the remote store first and is followed by an unconditional
// full refetch, so the visible list always reflects a fresh remote read
// (including store-assigned fields). Construct one per session; it is
// never shared across owners.
type Sync[T any] struct {
	store *Store[T]
	log   logger.Logger

	mu      sync.Mutex
	owner   string
	gen     uint64
	cache   []T
	loading bool
}

// NewSync wraps a typed store with a per-session cache. The sync starts
// unbound; writes are no-ops until Bind.
func NewSync[T any](st *Store[T], log logger.Logger) *Sync[T] {
	return &Sync[T]{
		store: st,
		log:   log.WithFields(map[string]interface{}{"collection": st.Collection()}),
	}
}

// Bind switches the sync to a new owner identity: the cache empties,
// loading flips on, and a background fetch fills it. A fetch started
// before a later Bind is discarded when it lands, so a stale response
// can never overwrite another owner's cache.
func (s *Sync[T]) Bind(ctx context.Context, ownerID string) {
	s.mu.Lock()
	s.owner = ownerID
	s.gen++
	gen := s.gen
	s.cache = nil
	s.loading = ownerID != ""
	s.mu.Unlock()

	if ownerID == "" {
		return
	}
	go s.refresh(ctx, ownerID, gen)
}

// Unbind clears the owner and cache (logout transition).
func (s *Sync[T]) Unbind() {
	s.Bind(context.Background(), "")
}

// Owner returns the currently bound owner identity.
func (s *Sync[T]) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Loading reports whether the initial fetch for the current owner is
// still in flight.
func (s *Sync[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Items returns a copy of the cached list.
func (s *Sync[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.cache))
	copy(out, s.cache)
	return out
}

// refresh fetches the full list and applies it only if gen is still the
// current bind generation. Fetch failures degrade to an empty cache and
// a log line; the caller keeps rendering.
func (s *Sync[T]) refresh(ctx context.Context, ownerID string, gen uint64) {
	items, err := s.store.List(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer Bind superseded this fetch.
		return
	}
	s.loading = false
	if err != nil {
		s.log.Error("fetch failed, cache left empty", map[string]interface{}{
			"owner": ownerID,
			"error": err.Error(),
		})
		s.cache = nil
		return
	}
	s.cache = items
}

// Create persists a new record for the bound owner, then refetches.
// A no-op when unbound. Write failures propagate after the refetch.
func (s *Sync[T]) Create(ctx context.Context, v T) error {
	owner, gen, ok := s.snapshot()
	if !ok {
		return nil
	}
	_, err := s.store.Create(ctx, owner, v)
	s.refresh(ctx, owner, gen)
	return err
}

// Update merges fields into one record, then refetches.
func (s *Sync[T]) Update(ctx context.Context, id string, fields store.Fields) error {
	owner, gen, ok := s.snapshot()
	if !ok {
		return nil
	}
	err := s.store.Update(ctx, id, fields)
	s.refresh(ctx, owner, gen)
	return err
}

// Delete removes one record, then refetches. NotFound propagates on
// this user-initiated path.
func (s *Sync[T]) Delete(ctx context.Context, id string) error {
	owner, gen, ok := s.snapshot()
	if !ok {
		return nil
	}
	err := s.store.Delete(ctx, id)
	s.refresh(ctx, owner, gen)
	return err
}

func (s *Sync[T]) snapshot() (owner string, gen uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner, s.gen, s.owner != ""
}

// AssignmentSync adds the status-flip convenience on top of the generic
// sync for assignments.
type AssignmentSync struct {
	*Sync[models.Assignment]
}

// NewAssignmentSync wraps an assignment store.
func NewAssignmentSync(st *Store[models.Assignment], log logger.Logger) *AssignmentSync {
	return &AssignmentSync{Sync: NewSync(st, log)}
}

// ToggleStatus flips an assignment between Pending and Completed based
// on the cached status, then issues the partial update.
func (s *AssignmentSync) ToggleStatus(ctx context.Context, id string) error {
	var current models.AssignmentStatus
	found := false
	for _, a := range s.Items() {
		if a.ID == id {
			current = a.Status
			found = true
			break
		}
	}
	if !found {
		return store.NewError(store.KindNotFound, "toggle", store.CollectionAssignments,
			fmt.Errorf("assignment %s not in cache", id))
	}
	return s.Update(ctx, id, store.Fields{"status": string(current.Toggled())})
}
