package config

// Environment variables read by parseEnv. Secrets are never read from the
// config file for the model key.
const (
	EnvLLMAPIKey    = "BRANDFORGE_LLM_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvSecretKey    = "BRANDFORGE_SECRET_KEY"
	EnvDatabaseDSN  = "BRANDFORGE_DATABASE_DSN"
	EnvS3AccessKey  = "BRANDFORGE_S3_ACCESS_KEY"
	EnvS3SecretKey  = "BRANDFORGE_S3_SECRET_KEY"
)

func parseEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}
	cfg.LLM.APIKey = getenv(EnvLLMAPIKey)
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = getenv(EnvOpenAIAPIKey)
	}
	setString(&cfg.SecretKey, getenv(EnvSecretKey))
	setString(&cfg.DatabaseDSN, getenv(EnvDatabaseDSN))
	setString(&cfg.S3AccessKey, getenv(EnvS3AccessKey))
	setString(&cfg.S3SecretKey, getenv(EnvS3SecretKey))
}
