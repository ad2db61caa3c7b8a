// internal/store/localstore/localstore.go

// Package localstore implements the document store boundary on local
// disk. Documents live as JSON files under <base>/<collection>/<id>,
// which keeps single-machine setups and tests free of external
// services.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"studytrack/internal/store"
)

// Store is the disk-backed document store.
type Store struct {
	d   *diskv.Diskv
	now func() time.Time
}

// Open creates a store rooted at basePath.
func Open(basePath string) *Store {
	d := diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      1024 * 1024,
	})
	return &Store{d: d, now: time.Now}
}

// SetClock overrides the clock used to resolve server timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKey(pk *diskv.PathKey) string {
	return strings.Join(append(pk.Path, pk.FileName), "/")
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

func wrap(op, collection string, err error) error {
	if os.IsNotExist(err) {
		return store.NewError(store.KindNotFound, op, collection, err)
	}
	return store.NewError(store.KindUnavailable, op, collection, err)
}

func (s *Store) readDoc(op, collection, id string) (store.Fields, error) {
	raw, err := s.d.Read(docKey(collection, id))
	if err != nil {
		return nil, wrap(op, collection, err)
	}
	var fields store.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, store.NewError(store.KindUnavailable, op, collection, err)
	}
	return fields, nil
}

func (s *Store) writeDoc(op, collection, id string, fields store.Fields) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return store.NewError(store.KindUnavailable, op, collection, err)
	}
	if err := s.d.Write(docKey(collection, id), raw); err != nil {
		return wrap(op, collection, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	var docs []store.Document
	for key := range s.d.KeysPrefix(collection+"/", ctx.Done()) {
		id := strings.TrimPrefix(key, collection+"/")
		fields, err := s.readDoc("list", collection, id)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		doc := store.Document{ID: id, Fields: fields}
		if q.MatchesOwner(doc) {
			docs = append(docs, doc)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, store.NewError(store.KindUnavailable, "list", collection, err)
	}
	if q.OrderBy != "" {
		store.SortDocuments(docs, q.OrderBy, q.Desc)
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields store.Fields) (string, error) {
	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	id := uuid.NewString()
	if err := s.writeDoc("insert", collection, id, f); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, fields store.Fields) error {
	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	return s.writeDoc("put", collection, id, f)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	existing, err := s.readDoc("update", collection, id)
	if err != nil {
		return err
	}
	patch := store.CloneFields(fields)
	store.ResolveTimestamps(patch, s.now())
	for k, v := range patch {
		existing[k] = v
	}
	return s.writeDoc("update", collection, id, existing)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	key := docKey(collection, id)
	if !s.d.Has(key) {
		return store.NewError(store.KindNotFound, "delete", collection, fmt.Errorf("no document %s", id))
	}
	if err := s.d.Erase(key); err != nil {
		return wrap("delete", collection, err)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context, collection string, fn func(store.Document) error) error {
	for key := range s.d.KeysPrefix(collection+"/", ctx.Done()) {
		id := strings.TrimPrefix(key, collection+"/")
		fields, err := s.readDoc("listall", collection, id)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(store.Document{ID: id, Fields: fields}); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return store.NewError(store.KindUnavailable, "listall", collection, err)
	}
	return nil
}
