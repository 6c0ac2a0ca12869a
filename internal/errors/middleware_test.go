package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddleware_LogsRequests(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	handler := NewErrorHandler(logger, false)
	mw := NewErrorMiddleware(handler, logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"success"}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/series?resolution=annual", nil)
	w := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	logged := logBuf.String()
	assert.Contains(t, logged, "http request")
	assert.Contains(t, logged, "/api/series")
	assert.Contains(t, logged, "resolution=annual")
}

func TestErrorMiddleware_ElevatesLogLevelForErrors(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	handler := NewErrorHandler(logger, false)
	mw := NewErrorMiddleware(handler, logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/series", nil)
	w := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(w, req)

	var entry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(logBuf.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler := NewErrorHandler(logger, false)
	mw := NewErrorMiddleware(handler, logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/series", nil)
	w := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
		excludes string
	}{
		{
			name:     "redacts token",
			body:     `{"token":"abc123","resolution":"annual"}`,
			contains: "[REDACTED]",
			excludes: "abc123",
		},
		{
			name:     "redacts api key",
			body:     `{"api_key":"secret-key"}`,
			contains: "[REDACTED]",
			excludes: "secret-key",
		},
		{
			name:     "passes through plain fields",
			body:     `{"resolution":"annual"}`,
			contains: "annual",
		},
		{
			name:     "non-json body unchanged",
			body:     "plain text body",
			contains: "plain text body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeRequestBody(tt.body)
			assert.Contains(t, got, tt.contains)
			if tt.excludes != "" {
				assert.NotContains(t, got, tt.excludes)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler := NewErrorHandler(logger, false)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/series", nil)
	w := httptest.NewRecorder()
	RecoveryMiddleware(handler)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
