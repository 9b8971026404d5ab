package config

import "time"

// Config holds runtime settings for the BlogPulse CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP endpoint.
//   - ReconnectInterval: how long to wait before redialing a dropped
//     websocket connection.
type Config struct {
	ServerBaseURL     string
	ReconnectInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.ReconnectInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
