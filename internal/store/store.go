// internal/store/store.go

// Package store defines the remote document store boundary: the
// collections, the Backend contract every storage implementation
// satisfies, and the error taxonomy surfaced across it.
package store

import (
	"context"
	"sort"
	"time"
)

// Collection names as laid out in the remote store.
const (
	CollectionAssignments = "assignments"
	CollectionProjects    = "projects"
	CollectionInternships = "internships"
	CollectionAccounts    = "users"
)

// Collections lists every known collection.
var Collections = []string{
	CollectionAssignments,
	CollectionProjects,
	CollectionInternships,
	CollectionAccounts,
}

// Fields is one document's payload, keyed by field name. Values are
// JSON-compatible; timestamps travel as RFC 3339 strings.
type Fields map[string]interface{}

// Document is a stored record with its generated identifier.
type Document struct {
	ID     string
	Fields Fields
}

// Query selects and orders documents within a collection. An empty
// OwnerID means no owner filter.
type Query struct {
	OwnerID string
	OrderBy string
	Desc    bool
}

// Backend is the abstract remote collaborator. Implementations map each
// call onto a single remote round trip; there is no cross-collection
// transaction.
type Backend interface {
	// List returns the documents matching q, ordered by q.OrderBy.
	List(ctx context.Context, collection string, q Query) ([]Document, error)

	// Insert persists fields under a generated id and returns the id.
	// ServerTimestamp sentinels are resolved store-side.
	Insert(ctx context.Context, collection string, fields Fields) (string, error)

	// Put persists fields under a caller-provided id, replacing any
	// existing document. Used for self-keyed collections (accounts).
	Put(ctx context.Context, collection, id string, fields Fields) error

	// Update merges fields into an existing document. Fields absent from
	// the partial payload are left untouched. NotFound if id is absent.
	Update(ctx context.Context, collection, id string, fields Fields) error

	// Delete removes a document. NotFound if id is absent.
	Delete(ctx context.Context, collection, id string) error

	// ListAll streams every document in a collection to fn without
	// materializing the full set. A non-nil return from fn stops the scan.
	ListAll(ctx context.Context, collection string, fn func(Document) error) error
}

// serverStamp is the sentinel replaced by the store's clock on write.
type serverStamp struct{}

// ServerTimestamp marks a field to be set to the store's current time
// on Insert, Put or Update.
var ServerTimestamp = serverStamp{}

// TimestampLayout is the RFC 3339 form used for stored timestamps. The
// fractional second is always nine digits, so every stamp has the same
// width and lexicographic comparison is chronological. Callers writing
// their own values into a sort field must use this layout too.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ResolveTimestamps replaces ServerTimestamp sentinels with now, in
// TimestampLayout form. Backends call this before encoding a document.
func ResolveTimestamps(fields Fields, now time.Time) {
	for k, v := range fields {
		if _, ok := v.(serverStamp); ok {
			fields[k] = now.UTC().Format(TimestampLayout)
		}
	}
}

// NormalizeTimestamp rewrites an RFC 3339 string into TimestampLayout
// so it compares correctly against store-assigned stamps. Values that
// are not RFC 3339 strings pass through unchanged.
func NormalizeTimestamp(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return v
	}
	return t.UTC().Format(TimestampLayout)
}

// MatchesOwner reports whether doc belongs to the queried owner.
func (q Query) MatchesOwner(doc Document) bool {
	if q.OwnerID == "" {
		return true
	}
	owner, _ := doc.Fields["ownerId"].(string)
	return owner == q.OwnerID
}

// SortDocuments orders docs by the string value of the named field.
// The default orderings all sort fixed-width TimestampLayout stamps,
// so lexicographic comparison is chronological.
func SortDocuments(docs []Document, field string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, _ := docs[i].Fields[field].(string)
		b, _ := docs[j].Fields[field].(string)
		if desc {
			return a > b
		}
		return a < b
	})
}

// CloneFields copies a payload so callers and backends never share maps.
func CloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
