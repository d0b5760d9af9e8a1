package config

// ApplyDefaults fills every unset field that has a sensible default.
// Called by Load before validation; exported so tests and embedders can
// build configs programmatically.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
	if c.Store.Type == "badger" {
		if c.Store.Badger.BlockCacheSizeMB == 0 {
			c.Store.Badger.BlockCacheSizeMB = 256
		}
		if c.Store.Badger.IndexCacheSizeMB == 0 {
			c.Store.Badger.IndexCacheSizeMB = 128
		}
	}

	if c.Notify.Type == "" {
		c.Notify.Type = "log"
	}

	if c.Content.S3.MaxRetries == 0 {
		c.Content.S3.MaxRetries = 10
	}

	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9090"
	}
}
