package config

import (
	"errors"
	"fmt"
	"time"
)

// MinPollInterval is the lowest refresh cadence the bridge accepts. Polling
// faster than this gets accounts flagged by the upstream anti-bot layer.
const MinPollInterval = time.Minute

// Validate checks that all required fields are set and values are valid.
func (c *BridgeConfig) Validate() error {
	if c.TGTG.AccessToken == "" {
		return errors.New("tgtg.access_token is required")
	}
	if c.TGTG.RefreshToken == "" {
		return errors.New("tgtg.refresh_token is required")
	}
	if c.TGTG.Cookie == "" {
		return errors.New("tgtg.cookie is required")
	}

	if c.Poll.Interval < MinPollInterval {
		return fmt.Errorf("poll.interval must be >= %s, got %s", MinPollInterval, c.Poll.Interval)
	}

	if c.ServerEnabled() {
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
		}
		if c.Server.WSSendBuffer < 1 {
			return errors.New("server.ws_send_buffer must be >= 1")
		}
	}

	if c.History.Enabled {
		if err := c.History.Database.validate("history.database"); err != nil {
			return err
		}
		if c.History.BatchSize < 1 {
			return errors.New("history.batch_size must be >= 1")
		}
		if c.History.BufferSize < 1 {
			return errors.New("history.buffer_size must be >= 1")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
