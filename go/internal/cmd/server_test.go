package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/scorekeeper/go/internal/config"
)

func TestServerRoutes(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := setupServices(ctx, &cfg)
	require.NoError(t, err)
	defer services.Close()

	ts := httptest.NewServer(setupServer(&cfg, services).Handler)
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"status":"ok"`)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "scorekeeper_sync_queue_depth")

	code, _ = get("/ws/stats")
	assert.Equal(t, http.StatusOK, code)

	resp, err := http.Post(ts.URL+"/api/matches", "application/json", strings.NewReader(
		`{"sport":"cricket","home":{"id":"0190d3c4-0000-7000-8000-000000000001"},"away":{"id":"0190d3c4-0000-7000-8000-000000000002"}}`,
	))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/matches/x", nil)
	req.Header.Set("Origin", "https://evil.example")

	assert.True(t, checkOrigin([]string{"*"})(req))
	assert.False(t, checkOrigin([]string{"https://scores.example"})(req))

	req.Header.Set("Origin", "https://scores.example")
	assert.True(t, checkOrigin([]string{"https://scores.example"})(req))
}
