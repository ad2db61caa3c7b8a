// internal/accounts/service.go

// Package accounts manages the self-keyed account documents: creation
// on signup, activity stamping on session start, and the streaming
// full listing the inactivity sweep runs on.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"

	"studytrack/internal/common/logger"
	"studytrack/internal/models"
	"studytrack/internal/store"
)

// Service wraps the accounts collection.
type Service struct {
	backend store.Backend
	log     logger.Logger
}

// NewService wires the account service onto a store backend.
func NewService(backend store.Backend, log logger.Logger) *Service {
	return &Service{
		backend: backend,
		log:     log.WithFields(map[string]interface{}{"collection": store.CollectionAccounts}),
	}
}

// Create writes the account document for a freshly authenticated id.
// Both timestamps are store-assigned.
func (s *Service) Create(ctx context.Context, id, email string) error {
	return s.backend.Put(ctx, store.CollectionAccounts, id, store.Fields{
		"email":        email,
		"createdAt":    store.ServerTimestamp,
		"lastActiveAt": store.ServerTimestamp,
	})
}

// TouchLastActive bumps the activity timestamp on session start. Only
// lastActiveAt is merged; the rest of the document is untouched.
func (s *Service) TouchLastActive(ctx context.Context, id string) error {
	return s.backend.Update(ctx, store.CollectionAccounts, id, store.Fields{
		"lastActiveAt": store.ServerTimestamp,
	})
}

// Count returns the number of registered accounts.
func (s *Service) Count(ctx context.Context) (int, error) {
	n := 0
	err := s.backend.ListAll(ctx, store.CollectionAccounts, func(store.Document) error {
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ForEach streams every account to fn without materializing the full
// set. Undecodable documents are logged and skipped, not fatal to the
// scan. A non-nil return from fn stops the stream.
func (s *Service) ForEach(ctx context.Context, fn func(models.Account) error) error {
	return s.backend.ListAll(ctx, store.CollectionAccounts, func(doc store.Document) error {
		account, err := decodeAccount(doc)
		if err != nil {
			s.log.Warn("skipping undecodable account", map[string]interface{}{
				"id":    doc.ID,
				"error": err.Error(),
			})
			return nil
		}
		return fn(account)
	})
}

func decodeAccount(doc store.Document) (models.Account, error) {
	var account models.Account
	merged := store.CloneFields(doc.Fields)
	merged["id"] = doc.ID
	raw, err := json.Marshal(merged)
	if err != nil {
		return account, fmt.Errorf("decode account %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, &account); err != nil {
		return account, fmt.Errorf("decode account %s: %w", doc.ID, err)
	}
	return account, nil
}
