// internal/store/instrument.go
package store

import (
	"context"
	"time"

	"studytrack/internal/common/metrics"
)

// WithMetrics wraps a backend so every call is counted and timed under
// the given backend name.
func WithMetrics(b Backend, backendName string) Backend {
	return &metricsBackend{next: b, name: backendName}
}

type metricsBackend struct {
	next Backend
	name string
}

func (m *metricsBackend) observe(op, collection string, start time.Time, err error) {
	metrics.StoreRequests.WithLabelValues(m.name, collection, op).Inc()
	metrics.StoreRequestDuration.WithLabelValues(m.name, op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreRequestErrors.WithLabelValues(m.name, collection, op, string(KindOf(err))).Inc()
	}
}

func (m *metricsBackend) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	start := time.Now()
	docs, err := m.next.List(ctx, collection, q)
	m.observe("list", collection, start, err)
	return docs, err
}

func (m *metricsBackend) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	start := time.Now()
	id, err := m.next.Insert(ctx, collection, fields)
	m.observe("insert", collection, start, err)
	return id, err
}

func (m *metricsBackend) Put(ctx context.Context, collection, id string, fields Fields) error {
	start := time.Now()
	err := m.next.Put(ctx, collection, id, fields)
	m.observe("put", collection, start, err)
	return err
}

func (m *metricsBackend) Update(ctx context.Context, collection, id string, fields Fields) error {
	start := time.Now()
	err := m.next.Update(ctx, collection, id, fields)
	m.observe("update", collection, start, err)
	return err
}

func (m *metricsBackend) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, collection, id)
	m.observe("delete", collection, start, err)
	return err
}

func (m *metricsBackend) ListAll(ctx context.Context, collection string, fn func(Document) error) error {
	start := time.Now()
	err := m.next.ListAll(ctx, collection, fn)
	m.observe("list_all", collection, start, err)
	return err
}
