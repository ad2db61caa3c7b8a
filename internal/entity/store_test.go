// internal/entity/store_test.go
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

func newAssignmentStore(t *testing.T, backend *memstore.Store) *Store[models.Assignment] {
	t.Helper()
	return NewStore(backend, Assignments, logger.NewTestLogger(t))
}

func testAssignment(title string) models.Assignment {
	due := time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)
	return models.Assignment{
		Title:    title,
		Subject:  "Algorithms",
		Priority: models.PriorityHigh,
		DueDate:  &due,
		Notes:    "chapters 4-6",
		Status:   models.AssignmentPending,
	}
}

func seedAssignment(backend *memstore.Store, id, owner, title, createdAt string) {
	backend.Seed(store.CollectionAssignments, id, store.Fields{
		"ownerId":   owner,
		"title":     title,
		"subject":   "Physics",
		"priority":  "Low",
		"status":    "Pending",
		"createdAt": createdAt,
	})
}

// ==========================
// Store Tests
// ==========================

func TestStore_CreateThenListRoundTrip(t *testing.T) {
	backend := memstore.New()
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	backend.SetClock(func() time.Time { return now })
	st := newAssignmentStore(t, backend)

	payload := testAssignment("Graph homework")
	id, err := st.Create(context.Background(), "owner-a", payload)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	items, err := st.List(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "owner-a", got.OwnerID)
	assert.Equal(t, payload.Title, got.Title)
	assert.Equal(t, payload.Subject, got.Subject)
	assert.Equal(t, payload.Priority, got.Priority)
	assert.Equal(t, payload.Notes, got.Notes)
	assert.Equal(t, payload.Status, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, payload.DueDate.Equal(*got.DueDate))
	// createdAt is store-assigned, not taken from the payload.
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestStore_ListOrdersNewestFirst(t *testing.T) {
	backend := memstore.New()
	st := newAssignmentStore(t, backend)

	seedAssignment(backend, "a1", "owner-a", "oldest", "2024-01-01T00:00:00Z")
	seedAssignment(backend, "a2", "owner-a", "newest", "2024-03-01T00:00:00Z")
	seedAssignment(backend, "a3", "owner-a", "middle", "2024-02-01T00:00:00Z")

	items, err := st.List(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "newest", items[0].Title)
	assert.Equal(t, "middle", items[1].Title)
	assert.Equal(t, "oldest", items[2].Title)
}

func TestStore_ListIsOwnerIsolated(t *testing.T) {
	backend := memstore.New()
	st := newAssignmentStore(t, backend)

	seedAssignment(backend, "a1", "owner-a", "mine", "2024-01-01T00:00:00Z")
	seedAssignment(backend, "b1", "owner-b", "theirs", "2024-01-02T00:00:00Z")

	items, err := st.List(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "mine", items[0].Title)

	for _, it := range items {
		assert.Equal(t, "owner-a", it.OwnerID)
	}

	empty, err := st.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_CreateRejectsInvalidPayload(t *testing.T) {
	backend := memstore.New()
	st := newAssignmentStore(t, backend)

	tests := []struct {
		name   string
		mutate func(a *models.Assignment)
	}{
		{"empty title", func(a *models.Assignment) { a.Title = "" }},
		{"unknown priority", func(a *models.Assignment) { a.Priority = "Urgent" }},
		{"unknown status", func(a *models.Assignment) { a.Status = "Archived" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := testAssignment("valid title")
			tt.mutate(&payload)
			_, err := st.Create(context.Background(), "owner-a", payload)
			require.Error(t, err)
			assert.Zero(t, backend.Count(store.CollectionAssignments))
		})
	}
}

func TestStore_CreateNormalizesSortFieldForOrdering(t *testing.T) {
	backend := memstore.New()
	projects := NewStore(backend, Projects, logger.NewTestLogger(t))
	ctx := context.Background()

	// Start dates 50ms apart inside the same second. The marshalled
	// values only sort chronologically once they share the fixed-width
	// timestamp layout.
	older := models.Project{
		Name:      "survey app",
		Type:      "Academic",
		StartDate: time.Date(2024, 3, 10, 9, 0, 0, 500_000_000, time.UTC),
		Status:    models.ProjectInProgress,
	}
	newer := older
	newer.Name = "compiler"
	newer.StartDate = older.StartDate.Add(50 * time.Millisecond)

	_, err := projects.Create(ctx, "owner-a", older)
	require.NoError(t, err)
	_, err = projects.Create(ctx, "owner-a", newer)
	require.NoError(t, err)

	got, err := projects.List(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "compiler", got[0].Name)
	assert.Equal(t, "survey app", got[1].Name)
}

func TestStore_UpdateNormalizesSortField(t *testing.T) {
	backend := memstore.New()
	projects := NewStore(backend, Projects, logger.NewTestLogger(t))
	backend.Seed(store.CollectionProjects, "p1", store.Fields{
		"ownerId": "owner-a", "name": "thesis", "type": "Academic",
		"startDate": "2024-01-01T00:00:00.000000000Z", "status": "In Progress",
	})

	err := projects.Update(context.Background(), "p1", store.Fields{
		"startDate": "2024-02-01T00:00:00.5Z",
	})
	require.NoError(t, err)

	docs, err := backend.List(context.Background(), store.CollectionProjects, store.Query{OwnerID: "owner-a"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2024-02-01T00:00:00.500000000Z", docs[0].Fields["startDate"])
}

func TestStore_UpdateMergesPartialPayload(t *testing.T) {
	backend := memstore.New()
	st := newAssignmentStore(t, backend)
	seedAssignment(backend, "a1", "owner-a", "keep me", "2024-01-01T00:00:00Z")

	err := st.Update(context.Background(), "a1", store.Fields{"status": "Completed"})
	require.NoError(t, err)

	items, err := st.List(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.AssignmentCompleted, items[0].Status)
	assert.Equal(t, "keep me", items[0].Title, "untouched fields survive a partial update")
}

func TestStore_DeleteTwiceSurfacesNotFound(t *testing.T) {
	backend := memstore.New()
	st := newAssignmentStore(t, backend)
	seedAssignment(backend, "a1", "owner-a", "doomed", "2024-01-01T00:00:00Z")

	require.NoError(t, st.Delete(context.Background(), "a1"))

	err := st.Delete(context.Background(), "a1")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestStore_UpdateMissingIsNotFound(t *testing.T) {
	backend := memstore.New()
	st := newAssignmentStore(t, backend)

	err := st.Update(context.Background(), "ghost", store.Fields{"status": "Completed"})
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestStore_ProjectAndInternshipOrdering(t *testing.T) {
	backend := memstore.New()
	log := logger.NewTestLogger(t)

	projects := NewStore(backend, Projects, log)
	backend.Seed(store.CollectionProjects, "p1", store.Fields{
		"ownerId": "owner-a", "name": "older", "type": "Academic",
		"startDate": "2024-01-01T00:00:00Z", "status": "In Progress",
	})
	backend.Seed(store.CollectionProjects, "p2", store.Fields{
		"ownerId": "owner-a", "name": "newer", "type": "Academic",
		"startDate": "2024-02-01T00:00:00Z", "status": "In Progress",
	})

	got, err := projects.List(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Name)

	internships := NewStore(backend, Internships, log)
	backend.Seed(store.CollectionInternships, "i1", store.Fields{
		"ownerId": "owner-a", "company": "first", "role": "SWE Intern",
		"applicationDate": "2024-01-10T00:00:00Z", "status": "Applied",
	})
	backend.Seed(store.CollectionInternships, "i2", store.Fields{
		"ownerId": "owner-a", "company": "second", "role": "SWE Intern",
		"applicationDate": "2024-03-10T00:00:00Z", "status": "Applied",
	})

	apps, err := internships.List(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "second", apps[0].Company)
}
