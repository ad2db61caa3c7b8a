// internal/store/retry.go
package store

import (
	"context"
	"time"

	"studytrack/internal/common/logger"
)

// RetryPolicy bounds how often an Unavailable call is reattempted.
// Backoff doubles after each failed attempt.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryPolicy is applied when the config leaves retry unset.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond}

// WithRetry wraps a backend so that Unavailable failures are retried
// with exponential backoff. Retry lives at the remote-call layer only;
// NotFound and Unauthorized are returned immediately. ListAll is not
// retried here: the reaper treats it as restartable on its next run.
func WithRetry(b Backend, policy RetryPolicy, log logger.Logger) Backend {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy
	}
	return &retryBackend{next: b, policy: policy, log: log}
}

type retryBackend struct {
	next   Backend
	policy RetryPolicy
	log    logger.Logger
}

func (r *retryBackend) do(ctx context.Context, op, collection string, call func() error) error {
	delay := r.policy.InitialDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = call()
		if err == nil || !IsUnavailable(err) || attempt >= r.policy.MaxAttempts {
			return err
		}
		r.log.Warn("store call failed, retrying", map[string]interface{}{
			"op":         op,
			"collection": collection,
			"attempt":    attempt,
			"delay":      delay.String(),
			"error":      err.Error(),
		})
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (r *retryBackend) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	var docs []Document
	err := r.do(ctx, "list", collection, func() error {
		var callErr error
		docs, callErr = r.next.List(ctx, collection, q)
		return callErr
	})
	return docs, err
}

func (r *retryBackend) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	var id string
	err := r.do(ctx, "insert", collection, func() error {
		var callErr error
		id, callErr = r.next.Insert(ctx, collection, fields)
		return callErr
	})
	return id, err
}

func (r *retryBackend) Put(ctx context.Context, collection, id string, fields Fields) error {
	return r.do(ctx, "put", collection, func() error {
		return r.next.Put(ctx, collection, id, fields)
	})
}

func (r *retryBackend) Update(ctx context.Context, collection, id string, fields Fields) error {
	return r.do(ctx, "update", collection, func() error {
		return r.next.Update(ctx, collection, id, fields)
	})
}

func (r *retryBackend) Delete(ctx context.Context, collection, id string) error {
	return r.do(ctx, "delete", collection, func() error {
		return r.next.Delete(ctx, collection, id)
	})
}

func (r *retryBackend) ListAll(ctx context.Context, collection string, fn func(Document) error) error {
	return r.next.ListAll(ctx, collection, fn)
}
