package notify

import (
	"context"

	"github.com/archivelab/coral/internal/logger"
)

// LogPublisher is a diagnostic transport that writes events to the process
// log instead of a broker. Useful in development and as the default when no
// transport is configured.
type LogPublisher struct{}

// Publish logs the event at debug level and always succeeds.
func (LogPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	logger.Debug("notify: %s %s", topic, payload)
	return nil
}
