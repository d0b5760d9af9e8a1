package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/archivelab/coral/pkg/metrics"
	"github.com/archivelab/coral/pkg/notify"
	"github.com/archivelab/coral/pkg/store"
)

// Model is the namespace engine. All state lives in the store collaborator;
// the engine itself is stateless and safe for concurrent use.
//
// Everything the engine needs is injected at construction (store backend,
// event emitter, metrics) and never read from ambient process state.
type Model struct {
	store   store.Store
	events  *notify.Emitter
	metrics metrics.ModelMetrics
}

// New creates a namespace engine over the given store.
//
// The emitter must not be nil; use notify.NewEmitter(notify.LogPublisher{})
// when no transport is configured. Pass metrics.NewNoopModelMetrics() to
// disable instrumentation.
func New(s store.Store, emitter *notify.Emitter, m metrics.ModelMetrics) *Model {
	if m == nil {
		m = metrics.NewNoopModelMetrics()
	}
	return &Model{store: s, events: emitter, metrics: m}
}

// observe records one operation outcome; used with defer from every
// public engine method.
func (m *Model) observe(op string, start time.Time, err error) {
	m.metrics.ObserveOperation(op, time.Since(start), err)
}

// getJSON loads and decodes one row. The boolean reports whether the row
// exists; decoding failures and store failures are returned as errors.
func (m *Model) getJSON(ctx context.Context, key []byte, into any) (bool, error) {
	value, err := m.store.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(value, into); err != nil {
		return false, fmt.Errorf("failed to decode row %q: %w", key, err)
	}
	return true, nil
}

// putJSON encodes and stores one row.
func (m *Model) putJSON(ctx context.Context, key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode row %q: %w", key, err)
	}
	return m.store.Set(ctx, key, value)
}
