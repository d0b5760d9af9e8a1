// Package notify emits change notifications for namespace mutations.
//
// Every create/update/delete of a collection or resource publishes a
// structured JSON event on a topic derived from the operation and the
// entry's path. Delivery is fire-and-forget: a transport failure is logged
// and swallowed, never surfaced to the mutation that triggered it. The
// mutation is durable in the store whether or not the event arrives. No
// retry or acknowledgment is modeled.
package notify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/archivelab/coral/internal/logger"
)

// Publisher is the pub/sub transport collaborator. Publish returns no
// acknowledgment beyond its error, and emitters treat that error as
// non-fatal.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// State is one entity-state snapshot carried in an event payload.
type State map[string]any

// dualPayload is the Collection-style pre/post event body. Either side may
// be empty: create carries an empty pre, delete an empty post.
type dualPayload struct {
	Pre  State `json:"pre"`
	Post State `json:"post"`
}

// Emitter builds topics and payloads and hands them to the transport.
type Emitter struct {
	pub Publisher
}

// NewEmitter creates an emitter over the given transport.
func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub}
}

// Topic constructs the notification topic for an operation against an
// entity ("collection" or "resource") at (container, name).
//
// Superfluous slashes are collapsed, and the transport's wildcard
// characters '#' and '+' are stripped so an entry name can never produce a
// topic that matches as a pattern.
func Topic(operation, entity, container, name string) string {
	raw := operation + "/" + entity + container + "/" + name
	segments := make([]string, 0, 8)
	for _, s := range strings.Split(raw, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	topic := strings.Join(segments, "/")
	topic = strings.ReplaceAll(topic, "#", "")
	return strings.ReplaceAll(topic, "+", "")
}

// PublishDual emits a pre/post dual-state event (collection operations).
func (e *Emitter) PublishDual(ctx context.Context, operation, entity, container, name string, pre, post State) {
	if pre == nil {
		pre = State{}
	}
	if post == nil {
		post = State{}
	}
	e.publish(ctx, Topic(operation, entity, container, name), dualPayload{Pre: pre, Post: post})
}

// PublishSingle emits a flat current-state event (resource operations).
func (e *Emitter) PublishSingle(ctx context.Context, operation, entity, container, name string, state State) {
	e.publish(ctx, Topic(operation, entity, container, name), state)
}

func (e *Emitter) publish(ctx context.Context, topic string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("notify: failed to encode payload for topic %q: %v", topic, err)
		return
	}
	logger.Info("notify: publishing on topic %q", topic)
	if err := e.pub.Publish(ctx, topic, body); err != nil {
		logger.Warn("notify: publish on topic %q failed: %v", topic, err)
	}
}
