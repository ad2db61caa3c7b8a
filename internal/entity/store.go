// internal/entity/store.go
package entity

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"studytrack/internal/common/logger"
	"studytrack/internal/store"
)

// Store is the typed, owner-scoped CRUD adapter over one remote
// collection. It carries no state beyond its wiring.
type Store[T any] struct {
	backend store.Backend
	desc    Descriptor[T]
	log     logger.Logger
}

// NewStore wires a typed store for one entity kind.
func NewStore[T any](backend store.Backend, desc Descriptor[T], log logger.Logger) *Store[T] {
	return &Store[T]{
		backend: backend,
		desc:    desc,
		log:     log.WithFields(map[string]interface{}{"collection": desc.Collection}),
	}
}

// Collection returns the remote collection this store is bound to.
func (s *Store[T]) Collection() string {
	return s.desc.Collection
}

// List returns every record owned by ownerID in the kind's default
// order (newest first). The owner filter is re-checked client-side so a
// misbehaving backend can never leak foreign records.
func (s *Store[T]) List(ctx context.Context, ownerID string) ([]T, error) {
	if ownerID == "" {
		return nil, nil
	}
	q := store.Query{OwnerID: ownerID, OrderBy: s.desc.OrderBy, Desc: true}
	docs, err := s.backend.List(ctx, s.desc.Collection, q)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		if !q.MatchesOwner(doc) {
			continue
		}
		v, err := decode[T](doc)
		if err != nil {
			s.log.Warn("skipping undecodable document", map[string]interface{}{
				"id":    doc.ID,
				"error": err.Error(),
			})
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Create validates the payload, stamps the owner and any store-assigned
// timestamps, and persists it. Returns the generated id.
func (s *Store[T]) Create(ctx context.Context, ownerID string, v T) (string, error) {
	fields, err := encode(v)
	if err != nil {
		return "", err
	}
	if err := s.validate(fields); err != nil {
		return "", err
	}

	fields["ownerId"] = ownerID
	for _, f := range s.desc.ServerTimestamps {
		fields[f] = store.ServerTimestamp
	}
	s.normalizeSortField(fields)
	return s.backend.Insert(ctx, s.desc.Collection, fields)
}

// Update merges the named fields into an existing record. Fields absent
// from the partial payload are never touched.
func (s *Store[T]) Update(ctx context.Context, id string, fields store.Fields) error {
	s.normalizeSortField(fields)
	return s.backend.Update(ctx, s.desc.Collection, id, fields)
}

// normalizeSortField rewrites a client-supplied value for the kind's
// sort field into the fixed-width timestamp layout, so lexicographic
// ordering in the backend stays chronological. Non-timestamp values
// pass through untouched.
func (s *Store[T]) normalizeSortField(fields store.Fields) {
	if s.desc.OrderBy == "" {
		return
	}
	if v, ok := fields[s.desc.OrderBy]; ok {
		fields[s.desc.OrderBy] = store.NormalizeTimestamp(v)
	}
}

// Delete removes a record. Deleting an absent id surfaces NotFound;
// only the reaper's cascade treats that as success.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, s.desc.Collection, id)
}

func (s *Store[T]) validate(fields store.Fields) error {
	if s.desc.Schema == nil {
		return nil
	}
	result, err := s.desc.Schema.Validate(gojsonschema.NewGoLoader(map[string]interface{}(fields)))
	if err != nil {
		return fmt.Errorf("validate %s payload: %w", s.desc.Collection, err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return fmt.Errorf("invalid %s payload: %s", s.desc.Collection, strings.Join(msgs, "; "))
	}
	return nil
}
