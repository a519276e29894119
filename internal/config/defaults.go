package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultBaseURL       = "https://apptoogoodtogo.com/api"
	DefaultAPITimeout    = 30 * time.Second
	DefaultPollInterval  = 30 * time.Minute
	DefaultServerHost    = "0.0.0.0"
	DefaultServerPort    = 8080
	DefaultWSSendBuffer  = 16
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultBatchSize     = 500
	DefaultFlushInterval = 5 * time.Second
	DefaultBufferSize    = 5000
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

func (c *BridgeConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = "bridge-" + uuid.NewString()
	}

	// TGTG API defaults
	if c.TGTG.BaseURL == "" {
		c.TGTG.BaseURL = DefaultBaseURL
	}
	if c.TGTG.Timeout <= 0 {
		c.TGTG.Timeout = DefaultAPITimeout
	}

	// Poll defaults
	if c.Poll.Interval <= 0 {
		c.Poll.Interval = DefaultPollInterval
	}

	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.WSSendBuffer == 0 {
		c.Server.WSSendBuffer = DefaultWSSendBuffer
	}

	// History defaults
	applyDBDefaults(&c.History.Database)
	if c.History.BatchSize == 0 {
		c.History.BatchSize = DefaultBatchSize
	}
	if c.History.FlushInterval <= 0 {
		c.History.FlushInterval = DefaultFlushInterval
	}
	if c.History.BufferSize == 0 {
		c.History.BufferSize = DefaultBufferSize
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
