package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for structural validity plus the
// cross-field rules the struct tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Store.Type == "badger" && c.Store.Badger.DBPath == "" {
		return fmt.Errorf("invalid config: store.badger.db_path is required when store.type is badger")
	}
	if c.Notify.Type == "websocket" && c.Notify.WebSocket.URL == "" {
		return fmt.Errorf("invalid config: notify.websocket.url is required when notify.type is websocket")
	}
	return nil
}
