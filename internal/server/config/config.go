// Package config handles configuration for the brandforge server: defaults,
// an optional JSON or TOML file, environment secrets and command-line flags,
// applied in that order.
package config

import (
	"time"

	"github.com/dmitrijs2005/brandforge/internal/guard"
	"github.com/dmitrijs2005/brandforge/internal/llm"
)

// Config holds runtime settings for the server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses of the two public endpoints.
//   - DatabaseDriver / DatabaseDSN: "postgres" (pgx) or "sqlite" and its DSN.
//   - SecretKey: HMAC secret used to verify bearer JWTs (HS256).
//   - LLM: model provider settings; the API key only comes from the environment.
//   - GenerationTimeout: hard bound on each model call.
//   - TiersFile: optional YAML file replacing the built-in tier table.
//   - RatePerMinute / RateBurst: per-user token bucket.
//   - S3*: artifact export target; export is disabled when S3Bucket is empty.
type Config struct {
	HTTPAddr           string
	GRPCAddr           string
	DatabaseDriver     string
	DatabaseDSN        string
	SecretKey          string
	LogLevel           string
	LLM                llm.Settings
	GenerationTimeout  time.Duration
	TiersFile          string
	RatePerMinute      int
	RateBurst          int
	SmallPayloadLimit  int
	DesignPayloadLimit int
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	S3PresignExpiry    time.Duration
	ShutdownTimeout    time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "brandforge.db"
	c.SecretKey = "secretKey"
	c.LogLevel = "info"
	c.LLM = llm.Settings{Provider: llm.ProviderMock, Model: "gpt-4o-mini"}
	c.GenerationTimeout = 60 * time.Second
	c.RatePerMinute = 30
	c.RateBurst = 10
	c.SmallPayloadLimit = guard.SmallPayloadLimit
	c.DesignPayloadLimit = guard.DesignPayloadLimit
	c.S3Region = "us-east-1"
	c.S3PresignExpiry = 15 * time.Minute
	c.ShutdownTimeout = 10 * time.Second
}

// ExportEnabled reports whether an export bucket is configured.
func (c *Config) ExportEnabled() bool { return c.S3Bucket != "" }

// Load builds a Config from defaults, the file named by -c/-config, the
// environment and finally flags from args.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, getenv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
