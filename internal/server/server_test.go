package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diliima/markdown-to-pdf-api/internal/config"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := New(config.Default())
	srv.build()

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "docconvd", body["service"])
}

func TestConversionRoutesRegistered(t *testing.T) {
	t.Parallel()

	srv := New(config.Default())
	srv.build()

	req := httptest.NewRequest(http.MethodPost, "/convert/markdown/pdf",
		bytes.NewReader([]byte(`{"markdown":"# ok"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBodyLimitEnforced(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.BodyLimitMB = 1
	srv := New(cfg)
	srv.build()

	big := bytes.Repeat([]byte("a"), 2*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/convert/markdown/pdf", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
