package model

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/archivelab/coral/pkg/metrics"
	"github.com/archivelab/coral/pkg/notify"
	"github.com/archivelab/coral/pkg/store"
	"github.com/archivelab/coral/pkg/store/memory"
)

// recordingPublisher captures every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Topic   string
	Payload []byte
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

func (p *recordingPublisher) last() publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return publishedEvent{}
	}
	return p.events[len(p.events)-1]
}

func newTestStore() store.Store {
	return memory.New()
}

func newModelOver(t *testing.T, s store.Store) *Model {
	t.Helper()
	return New(s, notify.NewEmitter(&recordingPublisher{}), metrics.NewNoopModelMetrics())
}

func newTestModel(t *testing.T) (*Model, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return New(memory.New(), notify.NewEmitter(pub), metrics.NewNoopModelMetrics()), pub
}

// failingStore rejects writes to one key prefix, for partial-failure tests.
type failingStore struct {
	store.Store
	failPrefix string
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Set(ctx context.Context, key, value []byte) error {
	if strings.HasPrefix(string(key), s.failPrefix) {
		return errDiskFull
	}
	return s.Store.Set(ctx, key, value)
}

// newTestModelWithRoot also bootstraps the root collection.
func newTestModelWithRoot(t *testing.T) (*Model, *recordingPublisher) {
	t.Helper()
	m, pub := newTestModel(t)
	if _, err := m.CreateRoot(context.Background()); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	return m, pub
}
