package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/brandforge/internal/timex"
)

const EnvToken = "BRANDFORGE_TOKEN"

// Config holds runtime settings for the brandforge CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - AccessToken: bearer JWT attached to every call.
//   - RequestTimeout: bound on a single call; generation can be slow.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 90 * time.Second
}

// fileConfig is a DTO used exclusively for unmarshalling.
type fileConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr" toml:"server_endpoint_addr"`
	AccessToken        string         `json:"access_token" toml:"access_token"`
	RequestTimeout     timex.Duration `json:"request_timeout" toml:"request_timeout"`
}

// Load applies defaults, then the file at path (skipped when empty), then
// the environment.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var fc fileConfig
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			err = toml.Unmarshal(b, &fc)
		} else {
			err = json.Unmarshal(b, &fc)
		}
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if fc.ServerEndpointAddr != "" {
			cfg.ServerEndpointAddr = fc.ServerEndpointAddr
		}
		if fc.AccessToken != "" {
			cfg.AccessToken = fc.AccessToken
		}
		if fc.RequestTimeout.Duration > 0 {
			cfg.RequestTimeout = fc.RequestTimeout.Duration
		}
	}

	if getenv != nil {
		if tok := getenv(EnvToken); tok != "" {
			cfg.AccessToken = tok
		}
	}
	return cfg, nil
}
