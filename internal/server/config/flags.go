package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/brandforge/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string         HTTP bind address (e.g. ":8080")
//	-g string         gRPC bind address (e.g. ":50051")
//	-d string         database DSN
//	-driver string    database driver: postgres or sqlite
//	-s string         JWT HMAC secret key
//	-l string         log level
//	-provider string  llm provider: openai, compat or mock
//	-model string     llm model name
//	-timeout duration generation timeout (e.g. "45s")
//	-tiers string     YAML tier table
//
// args is filtered with flagx.FilterArgs first so flags owned by other
// components (such as -c) do not cause parse errors.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-driver", "-s", "-l", "-provider", "-model", "-timeout", "-tiers"})

	fs := flag.NewFlagSet("brandforge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP address and port")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC address and port")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "JWT secret key")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LLM.Provider, "provider", cfg.LLM.Provider, "llm provider (openai|compat|mock)")
	fs.StringVar(&cfg.LLM.Model, "model", cfg.LLM.Model, "llm model")
	fs.DurationVar(&cfg.GenerationTimeout, "timeout", cfg.GenerationTimeout, "generation timeout")
	fs.StringVar(&cfg.TiersFile, "tiers", cfg.TiersFile, "tier table (YAML)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
