// internal/store/pgstore/pgstore.go

// Package pgstore implements the document store boundary on PostgreSQL.
// Each collection maps to a table (id text primary key, owner_id text,
// doc jsonb); partial updates merge with the jsonb || operator.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"studytrack/internal/store"
)

// Store is the PostgreSQL-backed document store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SetClock overrides the clock used to resolve server timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// tables is the allowlist of collection-to-table mappings; collection
// names never reach SQL text without passing through it.
var tables = map[string]string{
	store.CollectionAssignments: "assignments",
	store.CollectionProjects:    "projects",
	store.CollectionInternships: "internships",
	store.CollectionAccounts:    "users",
}

func tableFor(op, collection string) (string, error) {
	table, ok := tables[collection]
	if !ok {
		return "", store.NewError(store.KindUnavailable, op, collection, fmt.Errorf("unknown collection %q", collection))
	}
	return table, nil
}

func wrap(op, collection string, err error) error {
	if err == sql.ErrNoRows {
		return store.NewError(store.KindNotFound, op, collection, err)
	}
	return store.NewError(store.KindUnavailable, op, collection, err)
}

// Migrate creates the collection tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, table := range tables {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL DEFAULT '',
			doc JSONB NOT NULL
		)`, table)
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return wrap("migrate", table, err)
		}
		idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s (owner_id)", table, table)
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return wrap("migrate", table, err)
		}
	}
	return nil
}

func marshalDoc(op, collection string, fields store.Fields) ([]byte, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, store.NewError(store.KindUnavailable, op, collection, err)
	}
	return raw, nil
}

func ownerOf(fields store.Fields) string {
	owner, _ := fields["ownerId"].(string)
	return owner
}

func (s *Store) List(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	table, err := tableFor("list", collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, doc FROM %s", table)
	var args []any
	if q.OwnerID != "" {
		query += " WHERE owner_id = $1"
		args = append(args, q.OwnerID)
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY doc->>'%s' %s", q.OrderBy, dir)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list", collection, err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, wrap("list", collection, err)
		}
		var fields store.Fields
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, store.NewError(store.KindUnavailable, "list", collection, err)
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", collection, err)
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields store.Fields) (string, error) {
	table, err := tableFor("insert", collection)
	if err != nil {
		return "", err
	}

	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	raw, err := marshalDoc("insert", collection, f)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := fmt.Sprintf("INSERT INTO %s (id, owner_id, doc) VALUES ($1, $2, $3)", table)
	if _, err := s.db.ExecContext(ctx, query, id, ownerOf(f), raw); err != nil {
		return "", wrap("insert", collection, err)
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, fields store.Fields) error {
	table, err := tableFor("put", collection)
	if err != nil {
		return err
	}

	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	raw, err := marshalDoc("put", collection, f)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, owner_id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, doc = EXCLUDED.doc`, table)
	if _, err := s.db.ExecContext(ctx, query, id, ownerOf(f), raw); err != nil {
		return wrap("put", collection, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	table, err := tableFor("update", collection)
	if err != nil {
		return err
	}

	patch := store.CloneFields(fields)
	store.ResolveTimestamps(patch, s.now())
	raw, err := marshalDoc("update", collection, patch)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET doc = doc || $2::jsonb WHERE id = $1", table)
	res, err := s.db.ExecContext(ctx, query, id, raw)
	if err != nil {
		return wrap("update", collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrap("update", collection, err)
	}
	if affected == 0 {
		return store.NewError(store.KindNotFound, "update", collection, fmt.Errorf("no document %s", id))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	table, err := tableFor("delete", collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return wrap("delete", collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrap("delete", collection, err)
	}
	if affected == 0 {
		return store.NewError(store.KindNotFound, "delete", collection, fmt.Errorf("no document %s", id))
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context, collection string, fn func(store.Document) error) error {
	table, err := tableFor("listall", collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT id, doc FROM %s", table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return wrap("listall", collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return wrap("listall", collection, err)
		}
		var fields store.Fields
		if err := json.Unmarshal(raw, &fields); err != nil {
			return store.NewError(store.KindUnavailable, "listall", collection, err)
		}
		if err := fn(store.Document{ID: id, Fields: fields}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return wrap("listall", collection, err)
	}
	return nil
}
