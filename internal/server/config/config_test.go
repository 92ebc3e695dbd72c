package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Equal(t, 60*time.Second, c.GenerationTimeout)
	assert.Equal(t, llm.ProviderMock, c.LLM.Provider)
	assert.Equal(t, 16<<10, c.SmallPayloadLimit)
	assert.Equal(t, 256<<10, c.DesignPayloadLimit)
	assert.False(t, c.ExportEnabled())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	c, err := Load(nil, noEnv)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Empty(t, c.LLM.APIKey)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "brandforge.json", `{
		"http_addr": ":9090",
		"database_driver": "postgres",
		"database_dsn": "postgres://u:p@db/brandforge",
		"llm_provider": "openai",
		"generation_timeout": "45s",
		"rate_per_minute": 5,
		"s3_bucket": "designs"
	}`)

	c, err := Load([]string{"-c", path}, noEnv)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr, "unset file fields keep defaults")
	assert.Equal(t, "postgres", c.DatabaseDriver)
	assert.Equal(t, "postgres://u:p@db/brandforge", c.DatabaseDSN)
	assert.Equal(t, "openai", c.LLM.Provider)
	assert.Equal(t, 45*time.Second, c.GenerationTimeout)
	assert.Equal(t, 5, c.RatePerMinute)
	assert.True(t, c.ExportEnabled())
}

func TestLoad_TOMLFile(t *testing.T) {
	path := writeFile(t, "brandforge.toml", `
grpc_addr = ":6000"
log_level = "debug"
llm_provider = "compat"
llm_base_url = "http://localhost:11434/v1"
generation_timeout = "30s"
s3_presign_expiry = "5m"
`)
	c, err := Load([]string{"--config=" + path}, noEnv)
	require.NoError(t, err)
	assert.Equal(t, ":6000", c.GRPCAddr)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "compat", c.LLM.Provider)
	assert.Equal(t, "http://localhost:11434/v1", c.LLM.BaseURL)
	assert.Equal(t, 30*time.Second, c.GenerationTimeout)
	assert.Equal(t, 5*time.Minute, c.S3PresignExpiry)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "brandforge.json", `{"http_addr": ":9090", "secret_key": "from-file"}`)
	env := envMap(map[string]string{
		EnvOpenAIAPIKey: "sk-openai",
		EnvSecretKey:    "from-env",
	})

	c, err := Load([]string{"-c", path, "-a", ":7070", "-timeout", "5s", "-provider", "openai"}, env)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.HTTPAddr, "flags beat the file")
	assert.Equal(t, "from-env", c.SecretKey, "env beats the file")
	assert.Equal(t, "sk-openai", c.LLM.APIKey)
	assert.Equal(t, 5*time.Second, c.GenerationTimeout)
	assert.Equal(t, "openai", c.LLM.Provider)

	c, err = Load(nil, envMap(map[string]string{EnvLLMAPIKey: "sk-bf", EnvOpenAIAPIKey: "sk-openai"}))
	require.NoError(t, err)
	assert.Equal(t, "sk-bf", c.LLM.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}, noEnv)
	assert.Error(t, err)

	bad := writeFile(t, "bad.json", `{"generation_timeout": true}`)
	_, err = Load([]string{"-c", bad}, noEnv)
	assert.Error(t, err)

	_, err = Load([]string{"-timeout", "soon"}, noEnv)
	assert.Error(t, err)
}
