// Package websocket implements the notification transport over a WebSocket
// connection to an event broker endpoint.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// frame is the wire format: one JSON object per event.
type frame struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher publishes notification events as JSON frames over a single
// WebSocket connection.
//
// The connection is shared by all callers and guarded by a mutex because
// gorilla/websocket allows at most one concurrent writer. A failed write
// closes the connection and triggers one reconnect attempt on the next
// Publish; persistent broker outages therefore surface as per-event errors,
// which the emitter logs and drops.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a publisher and dials the broker endpoint.
func New(ctx context.Context, url string) (*Publisher, error) {
	p := &Publisher{url: url}
	if err := p.dial(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to event broker at %s: %w", url, err)
	}
	return p, nil
}

func (p *Publisher) dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return err
	}
	p.conn = conn
	return nil
}

// Publish sends one event frame. No acknowledgment is awaited.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		if err := p.dial(ctx); err != nil {
			return fmt.Errorf("reconnect failed: %w", err)
		}
	}

	if err := p.conn.WriteJSON(frame{Topic: topic, Payload: payload}); err != nil {
		_ = p.conn.Close()
		p.conn = nil
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Close closes the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
