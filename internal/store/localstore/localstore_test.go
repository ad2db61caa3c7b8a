// internal/store/localstore/localstore_test.go

package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/internal/store"
)

func TestInsert_RoundTripWithServerTimestamp(t *testing.T) {
	s := Open(t.TempDir())
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })
	ctx := context.Background()

	id, err := s.Insert(ctx, store.CollectionAssignments, store.Fields{
		"ownerId":   "owner-a",
		"title":     "Reading response",
		"createdAt": store.ServerTimestamp,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	docs, err := s.List(ctx, store.CollectionAssignments, store.Query{OwnerID: "owner-a"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, fixed.Format(store.TimestampLayout), docs[0].Fields["createdAt"])
}

func TestList_FiltersOwnerAndSorts(t *testing.T) {
	s := Open(t.TempDir())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, owner := range []string{"owner-a", "owner-b", "owner-a"} {
		_, err := s.Insert(ctx, store.CollectionProjects, store.Fields{
			"ownerId":   owner,
			"name":      "project",
			"startDate": base.Add(time.Duration(i) * time.Hour).Format(store.TimestampLayout),
		})
		require.NoError(t, err)
	}

	docs, err := s.List(ctx, store.CollectionProjects, store.Query{
		OwnerID: "owner-a",
		OrderBy: "startDate",
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.True(t, docs[0].Fields["startDate"].(string) > docs[1].Fields["startDate"].(string))
}

func TestList_CollectionsAreIsolated(t *testing.T) {
	s := Open(t.TempDir())
	ctx := context.Background()

	_, err := s.Insert(ctx, store.CollectionAssignments, store.Fields{"ownerId": "owner-a", "title": "A"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, store.CollectionProjects, store.Fields{"ownerId": "owner-a", "name": "P"})
	require.NoError(t, err)

	docs, err := s.List(ctx, store.CollectionAssignments, store.Query{OwnerID: "owner-a"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestPut_OverwritesSelfKeyedDocument(t *testing.T) {
	s := Open(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.CollectionAccounts, "acct-1", store.Fields{"email": "a@example.edu"}))
	require.NoError(t, s.Put(ctx, store.CollectionAccounts, "acct-1", store.Fields{"email": "b@example.edu"}))

	docs, err := s.List(ctx, store.CollectionAccounts, store.Query{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b@example.edu", docs[0].Fields["email"])
}

func TestUpdate_MergesPatchIntoExisting(t *testing.T) {
	s := Open(t.TempDir())
	ctx := context.Background()

	id, err := s.Insert(ctx, store.CollectionInternships, store.Fields{
		"ownerId": "owner-a",
		"company": "Acme",
		"status":  "Applied",
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, store.CollectionInternships, id, store.Fields{"status": "Interview"}))

	docs, err := s.List(ctx, store.CollectionInternships, store.Query{OwnerID: "owner-a"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Interview", docs[0].Fields["status"])
	assert.Equal(t, "Acme", docs[0].Fields["company"])
}

func TestUpdate_MissingDocumentIsNotFound(t *testing.T) {
	s := Open(t.TempDir())
	err := s.Update(context.Background(), store.CollectionInternships, "absent", store.Fields{"status": "Offer"})
	assert.True(t, store.IsNotFound(err))
}

func TestDelete_SecondDeleteIsNotFound(t *testing.T) {
	s := Open(t.TempDir())
	ctx := context.Background()

	id, err := s.Insert(ctx, store.CollectionAssignments, store.Fields{"ownerId": "owner-a", "title": "A"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, store.CollectionAssignments, id))
	assert.True(t, store.IsNotFound(s.Delete(ctx, store.CollectionAssignments, id)))
}

func TestListAll_StreamsEveryDocument(t *testing.T) {
	s := Open(t.TempDir())
	ctx := context.Background()

	want := map[string]bool{}
	for _, email := range []string{"a@example.edu", "b@example.edu", "c@example.edu"} {
		id, err := s.Insert(ctx, store.CollectionAccounts, store.Fields{"email": email})
		require.NoError(t, err)
		want[id] = true
	}

	seen := map[string]bool{}
	err := s.ListAll(ctx, store.CollectionAccounts, func(doc store.Document) error {
		seen[doc.ID] = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, seen)
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := Open(dir)
	id, err := first.Insert(ctx, store.CollectionAssignments, store.Fields{"ownerId": "owner-a", "title": "Persisted"})
	require.NoError(t, err)

	second := Open(dir)
	docs, err := second.List(ctx, store.CollectionAssignments, store.Query{OwnerID: "owner-a"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
}
