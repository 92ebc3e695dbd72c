package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/brandforge/internal/flagx"
	"github.com/dmitrijs2005/brandforge/internal/timex"
)

// fileConfig is the on-disk shape for both JSON and TOML. Durations accept
// strings such as "60s". Zero values leave the current setting untouched.
type fileConfig struct {
	HTTPAddr           string         `json:"http_addr" toml:"http_addr"`
	GRPCAddr           string         `json:"grpc_addr" toml:"grpc_addr"`
	DatabaseDriver     string         `json:"database_driver" toml:"database_driver"`
	DatabaseDSN        string         `json:"database_dsn" toml:"database_dsn"`
	SecretKey          string         `json:"secret_key" toml:"secret_key"`
	LogLevel           string         `json:"log_level" toml:"log_level"`
	LLMProvider        string         `json:"llm_provider" toml:"llm_provider"`
	LLMModel           string         `json:"llm_model" toml:"llm_model"`
	LLMBaseURL         string         `json:"llm_base_url" toml:"llm_base_url"`
	GenerationTimeout  timex.Duration `json:"generation_timeout" toml:"generation_timeout"`
	TiersFile          string         `json:"tiers_file" toml:"tiers_file"`
	RatePerMinute      int            `json:"rate_per_minute" toml:"rate_per_minute"`
	RateBurst          int            `json:"rate_burst" toml:"rate_burst"`
	SmallPayloadLimit  int            `json:"small_payload_limit" toml:"small_payload_limit"`
	DesignPayloadLimit int            `json:"design_payload_limit" toml:"design_payload_limit"`
	S3AccessKey        string         `json:"s3_access_key" toml:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key" toml:"s3_secret_key"`
	S3Bucket           string         `json:"s3_bucket" toml:"s3_bucket"`
	S3Region           string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	S3PresignExpiry    timex.Duration `json:"s3_presign_expiry" toml:"s3_presign_expiry"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout" toml:"shutdown_timeout"`
}

// parseFile overlays the config file named by -c/-config, if any. The format
// follows the extension: .toml for TOML, anything else is JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(b, &fc)
	} else {
		err = json.Unmarshal(b, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.HTTPAddr, fc.HTTPAddr)
	setString(&cfg.GRPCAddr, fc.GRPCAddr)
	setString(&cfg.DatabaseDriver, fc.DatabaseDriver)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.SecretKey, fc.SecretKey)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LLM.Provider, fc.LLMProvider)
	setString(&cfg.LLM.Model, fc.LLMModel)
	setString(&cfg.LLM.BaseURL, fc.LLMBaseURL)
	setString(&cfg.TiersFile, fc.TiersFile)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)

	setInt(&cfg.RatePerMinute, fc.RatePerMinute)
	setInt(&cfg.RateBurst, fc.RateBurst)
	setInt(&cfg.SmallPayloadLimit, fc.SmallPayloadLimit)
	setInt(&cfg.DesignPayloadLimit, fc.DesignPayloadLimit)

	if fc.GenerationTimeout.Duration > 0 {
		cfg.GenerationTimeout = fc.GenerationTimeout.Duration
	}
	if fc.S3PresignExpiry.Duration > 0 {
		cfg.S3PresignExpiry = fc.S3PresignExpiry.Duration
	}
	if fc.ShutdownTimeout.Duration > 0 {
		cfg.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
