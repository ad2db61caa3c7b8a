// internal/store/redisstore/redisstore.go

// Package redisstore implements the document store boundary on Redis.
// Each document is a JSON string under st:doc:<collection>:<id>; a
// per-collection set of ids supports listing and lazy scans.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studytrack/internal/store"
)

const scanBatch = 100

// Store is the Redis-backed document store.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// New wraps an existing Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// SetClock overrides the clock used to resolve server timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func docKey(collection, id string) string {
	return "st:doc:" + collection + ":" + id
}

func idsKey(collection string) string {
	return "st:ids:" + collection
}

func wrap(op, collection string, err error) error {
	if errors.Is(err, redis.Nil) {
		return store.NewError(store.KindNotFound, op, collection, err)
	}
	return store.NewError(store.KindUnavailable, op, collection, err)
}

func (s *Store) readDoc(ctx context.Context, op, collection, id string) (store.Fields, error) {
	raw, err := s.client.Get(ctx, docKey(collection, id)).Result()
	if err != nil {
		return nil, wrap(op, collection, err)
	}
	var fields store.Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, store.NewError(store.KindUnavailable, op, collection, err)
	}
	return fields, nil
}

func (s *Store) writeDoc(ctx context.Context, op, collection, id string, fields store.Fields) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return store.NewError(store.KindUnavailable, op, collection, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, docKey(collection, id), raw, 0)
	pipe.SAdd(ctx, idsKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return wrap(op, collection, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	ids, err := s.client.SMembers(ctx, idsKey(collection)).Result()
	if err != nil {
		return nil, wrap("list", collection, err)
	}

	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		fields, err := s.readDoc(ctx, "list", collection, id)
		if store.IsNotFound(err) {
			// Index entry outlived its document; skip.
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
	if q.OrderBy != "" {
		store.SortDocuments(docs, q.OrderBy, q.Desc)
	}
	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields store.Fields) (string, error) {
	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	id := uuid.NewString()
	if err := s.writeDoc(ctx, "insert", collection, id, f); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, fields store.Fields) error {
	f := store.CloneFields(fields)
	store.ResolveTimestamps(f, s.now())
	return s.writeDoc(ctx, "put", collection, id, f)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	existing, err := s.readDoc(ctx, "update", collection, id)
	if err != nil {
		return err
	}
	patch := store.CloneFields(fields)
	store.ResolveTimestamps(patch, s.now())
	for k, v := range patch {
		existing[k] = v
	}
	return s.writeDoc(ctx, "update", collection, id, existing)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	removed, err := s.client.SRem(ctx, idsKey(collection), id).Result()
	if err != nil {
		return wrap("delete", collection, err)
	}
	if removed == 0 {
		return store.NewError(store.KindNotFound, "delete", collection, fmt.Errorf("no document %s", id))
	}
	if err := s.client.Del(ctx, docKey(collection, id)).Err(); err != nil {
		return wrap("delete", collection, err)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context, collection string, fn func(store.Document) error) error {
	iter := s.client.SScan(ctx, idsKey(collection), 0, "", scanBatch).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()
		fields, err := s.readDoc(ctx, "listall", collection, id)
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
	if err := iter.Err(); err != nil {
		return wrap("listall", collection, err)
	}
	return nil
}
