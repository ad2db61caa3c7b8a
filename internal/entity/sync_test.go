// internal/entity/sync_test.go
package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/internal/common/logger"
	"studytrack/internal/models"
	"studytrack/internal/store"
	"studytrack/internal/store/memstore"
)

// ==========================
// Test Helper Functions
// ==========================

func waitSettled[T any](t *testing.T, s *Sync[T]) {
	t.Helper()
	require.Eventually(t, func() bool { return !s.Loading() },
		2*time.Second, 5*time.Millisecond, "sync never finished loading")
}

func newBoundSync(t *testing.T, backend *memstore.Store, owner string) *AssignmentSync {
	t.Helper()
	st := newAssignmentStore(t, backend)
	s := NewAssignmentSync(st, logger.NewTestLogger(t))
	s.Bind(context.Background(), owner)
	waitSettled(t, s.Sync)
	return s
}

// gatedBackend blocks every List call until the test releases the gate,
// used to interleave fetches with rebinds.
type gatedBackend struct {
	store.Backend
	gate chan struct{}
}

func (g *gatedBackend) List(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	<-g.gate
	return g.Backend.List(ctx, collection, q)
}

// ==========================
// Sync Tests
// ==========================

func TestSync_BindLoadsCache(t *testing.T) {
	backend := memstore.New()
	seedAssignment(backend, "a1", "owner-a", "essay", "2024-01-01T00:00:00Z")

	s := newBoundSync(t, backend, "owner-a")

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "essay", items[0].Title)
	assert.Equal(t, "owner-a", s.Owner())
}

func TestSync_FetchFailureLeavesEmptyCache(t *testing.T) {
	backend := memstore.New()
	seedAssignment(backend, "a1", "owner-a", "essay", "2024-01-01T00:00:00Z")
	backend.FailNext(memstore.OpList, store.CollectionAssignments, 1, store.KindUnavailable)

	s := newBoundSync(t, backend, "owner-a")

	// Degraded, not crashed: the cache is empty and loading is done.
	assert.Empty(t, s.Items())
	assert.False(t, s.Loading())
}

func TestSync_CreateRefetches(t *testing.T) {
	backend := memstore.New()
	s := newBoundSync(t, backend, "owner-a")

	err := s.Create(context.Background(), testAssignment("fresh"))
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].Title)
	assert.NotEmpty(t, items[0].ID, "refetched record carries the server-assigned id")
}

func TestSync_WriteErrorPropagates(t *testing.T) {
	backend := memstore.New()
	seedAssignment(backend, "a1", "owner-a", "existing", "2024-01-01T00:00:00Z")
	s := newBoundSync(t, backend, "owner-a")

	backend.FailNext(memstore.OpInsert, store.CollectionAssignments, 1, store.KindUnavailable)
	err := s.Create(context.Background(), testAssignment("doomed"))
	require.Error(t, err)
	assert.True(t, store.IsUnavailable(err))

	// The refetch still ran; the cache reflects the remote truth.
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "existing", items[0].Title)
}

func TestSync_DeletePropagatesNotFound(t *testing.T) {
	backend := memstore.New()
	s := newBoundSync(t, backend, "owner-a")

	err := s.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestSync_UnboundWritesAreNoOps(t *testing.T) {
	backend := memstore.New()
	st := newAssignmentStore(t, backend)
	s := NewAssignmentSync(st, logger.NewTestLogger(t))

	require.NoError(t, s.Create(context.Background(), testAssignment("ignored")))
	assert.Zero(t, backend.Count(store.CollectionAssignments))

	for _, call := range backend.Calls() {
		assert.NotEqual(t, memstore.OpInsert, call.Op)
	}
}

func TestSync_UnbindClearsCache(t *testing.T) {
	backend := memstore.New()
	seedAssignment(backend, "a1", "owner-a", "essay", "2024-01-01T00:00:00Z")
	s := newBoundSync(t, backend, "owner-a")
	require.NotEmpty(t, s.Items())

	s.Unbind()
	assert.Empty(t, s.Items())
	assert.Empty(t, s.Owner())
	assert.False(t, s.Loading())
}

// TestSync_StaleFetchDiscarded rebinds while the first owner's fetch is
// still in flight and checks the late result never lands in the cache.
func TestSync_StaleFetchDiscarded(t *testing.T) {
	backend := memstore.New()
	seedAssignment(backend, "a1", "owner-a", "owner-a item", "2024-01-01T00:00:00Z")
	seedAssignment(backend, "b1", "owner-b", "owner-b item", "2024-01-02T00:00:00Z")

	gated := &gatedBackend{Backend: backend, gate: make(chan struct{})}
	st := NewStore(gated, Assignments, logger.NewTestLogger(t))
	s := NewSync(st, logger.NewTestLogger(t))

	s.Bind(context.Background(), "owner-a")
	s.Bind(context.Background(), "owner-b")

	// Release both in-flight fetches in whichever order the scheduler
	// picks; only the owner-b result may be applied.
	gated.gate <- struct{}{}
	gated.gate <- struct{}{}

	require.Eventually(t, func() bool {
		items := s.Items()
		return len(items) == 1 && items[0].OwnerID == "owner-b"
	}, 2*time.Second, 5*time.Millisecond, "cache never settled on the new owner")

	for _, it := range s.Items() {
		assert.NotEqual(t, "owner-a", it.OwnerID, "stale fetch leaked into the cache")
	}
}

// ==========================
// Toggle Tests
// ==========================

func TestAssignmentSync_ToggleStatus(t *testing.T) {
	backend := memstore.New()
	seedAssignment(backend, "a1", "owner-a", "flip me", "2024-01-01T00:00:00Z")
	s := newBoundSync(t, backend, "owner-a")

	require.NoError(t, s.ToggleStatus(context.Background(), "a1"))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.AssignmentCompleted, items[0].Status)

	require.NoError(t, s.ToggleStatus(context.Background(), "a1"))
	items = s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.AssignmentPending, items[0].Status)
}

func TestAssignmentSync_ToggleUnknownID(t *testing.T) {
	backend := memstore.New()
	s := newBoundSync(t, backend, "owner-a")

	err := s.ToggleStatus(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}
