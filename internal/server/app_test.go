package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/server/auth"
	"github.com/dmitrijs2005/brandforge/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCAddr = "127.0.0.1:0"
	c.LogLevel = "error"
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_UnknownDriver(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDriver = "oracle"
	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestNewApp_UnknownProvider(t *testing.T) {
	c := testConfig(t)
	c.LLM.Provider = "carrier-pigeon"
	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestApp_HTTPFlow(t *testing.T) {
	c := testConfig(t)
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	h := app.httpHandler()
	token, err := auth.GenerateToken("user-1", []byte(c.SecretKey), time.Minute)
	require.NoError(t, err)

	post := func(path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/v1/generations", map[string]string{"brandDescription": "Eco-friendly coffee shop", "tier": "basic"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var gen struct {
		Artifact struct {
			ID      string `json:"id"`
			Version int    `json:"version"`
		} `json:"artifact"`
		CreditsRemaining int64 `json:"creditsRemaining"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	assert.Equal(t, 1, gen.Artifact.Version)
	assert.Equal(t, int64(2), gen.CreditsRemaining)

	rec = post("/v1/refinements", map[string]any{
		"parentVersionId": gen.Artifact.ID,
		"constraints":     map[string]any{"keepPrimaryColor": true, "improveAccessibility": true},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"version":2`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	h.ServeHTTP(mrec, req)
	require.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), "brandforge_designs_total")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
