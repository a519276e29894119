package config

import "time"

// BridgeConfig is the root configuration for a bridge instance.
type BridgeConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	TGTG     TGTGConfig     `yaml:"tgtg"`
	Items    []string       `yaml:"items"`
	Poll     PollConfig     `yaml:"poll"`
	Server   ServerConfig   `yaml:"server"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this bridge.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// TGTGConfig holds TGTG account credentials and API settings. The token and
// cookie values come from a prior device login; the bridge only refreshes
// them, it never performs the email login flow.
type TGTGConfig struct {
	AccessToken  string        `yaml:"access_token"`
	RefreshToken string        `yaml:"refresh_token"`
	Cookie       string        `yaml:"cookie"`
	UserID       string        `yaml:"user_id"`
	Email        string        `yaml:"email"`
	UserAgent    string        `yaml:"user_agent"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// PollConfig holds refresh cycle settings.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig holds the HTTP/WebSocket entity surface settings.
type ServerConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	WSSendBuffer int    `yaml:"ws_send_buffer"`
}

// HistoryConfig holds the optional availability history sink.
type HistoryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ServerEnabled reports whether the entity surface should run; it defaults
// to on when the config omits the flag.
func (c *BridgeConfig) ServerEnabled() bool {
	if c.Server.Enabled == nil {
		return true
	}
	return *c.Server.Enabled
}
