package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "energymix/internal/errors"
	"energymix/pkg/contracts/domain"
)

func newValidationMiddleware(t *testing.T) *ValidationMiddleware {
	t.Helper()
	logger := testLogger()
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func newQueryValidator(t *testing.T) *QueryParamValidator {
	t.Helper()
	logger := testLogger()
	return NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStruct_SourceValidator(t *testing.T) {
	type seriesRequest struct {
		Source string `json:"source" validate:"required,source"`
	}

	m := newValidationMiddleware(t)

	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{name: "reportable source", source: domain.SourceCoal},
		{name: "another reportable source", source: domain.SourceGasDry},
		{name: "crude oil is not reportable", source: domain.SourceCrudeOil, wantErr: true},
		{name: "unknown source", source: "petroleum", wantErr: true},
		{name: "empty", source: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(seriesRequest{Source: tt.source})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStruct_FilenameValidator(t *testing.T) {
	type exportRequest struct {
		Filename string `json:"filename" validate:"omitempty,filename"`
	}

	m := newValidationMiddleware(t)

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{name: "absent is fine", filename: ""},
		{name: "plain name", filename: "mix_2024.csv"},
		{name: "parent traversal", filename: "../etc/passwd", wantErr: true},
		{name: "path separator", filename: "exports/mix.csv", wantErr: true},
		{name: "backslash separator", filename: `exports\mix.csv`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(exportRequest{Filename: tt.filename})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	m := newValidationMiddleware(t)
	nextCalled := false
	handler := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("GET bypasses body validation", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodGet, "/api/series", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.True(t, nextCalled)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid JSON body rejected", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodPost, "/api/series", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid JSON body passes", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodPost, "/api/series", strings.NewReader(`{"sources":["coal"]}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.True(t, nextCalled)
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodPost, "/api/series", strings.NewReader("{}"))
		req.ContentLength = 2 * 1024 * 1024
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestQueryParamValidator_ValidateInt(t *testing.T) {
	v := newQueryValidator(t)

	tests := []struct {
		name     string
		query    string
		wantOK   bool
		wantVal  int
		wantCode int
	}{
		{name: "absent uses default", query: "", wantOK: true, wantVal: 1973},
		{name: "valid value", query: "from=2001", wantOK: true, wantVal: 2001},
		{name: "not an integer", query: "from=two", wantOK: false, wantCode: http.StatusBadRequest},
		{name: "trailing garbage", query: "from=20x0", wantOK: false, wantCode: http.StatusBadRequest},
		{name: "float rejected", query: "from=1973.5", wantOK: false, wantCode: http.StatusBadRequest},
		{name: "below minimum", query: "from=1800", wantOK: false, wantCode: http.StatusBadRequest},
		{name: "above maximum", query: "from=3001", wantOK: false, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/series?"+tt.query, nil)
			rec := httptest.NewRecorder()

			got, ok := v.ValidateInt(rec, req, "from", 1900, 3000, 1973)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantVal, got)
			} else {
				assert.Equal(t, tt.wantCode, rec.Code)
			}
		})
	}
}

func TestQueryParamValidator_ValidateSources(t *testing.T) {
	v := newQueryValidator(t)
	allowed := domain.ReportableSources()

	t.Run("absent uses default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/series", nil)
		rec := httptest.NewRecorder()
		got, ok := v.ValidateSources(rec, req, "sources", allowed, allowed)
		require.True(t, ok)
		assert.Equal(t, allowed, got)
	})

	t.Run("comma separated list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/series?sources=coal,wind,solar", nil)
		rec := httptest.NewRecorder()
		got, ok := v.ValidateSources(rec, req, "sources", allowed, allowed)
		require.True(t, ok)
		assert.Equal(t, []string{"coal", "wind", "solar"}, got)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/series?sources=coal,coal,wind", nil)
		rec := httptest.NewRecorder()
		got, ok := v.ValidateSources(rec, req, "sources", allowed, allowed)
		require.True(t, ok)
		assert.Equal(t, []string{"coal", "wind"}, got)
	})

	t.Run("whitespace tolerated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/series?sources=coal,%20wind", nil)
		rec := httptest.NewRecorder()
		got, ok := v.ValidateSources(rec, req, "sources", allowed, allowed)
		require.True(t, ok)
		assert.Equal(t, []string{"coal", "wind"}, got)
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/series?sources=coal,oil_shale", nil)
		rec := httptest.NewRecorder()
		_, ok := v.ValidateSources(rec, req, "sources", allowed, allowed)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "oil_shale")
	})

	t.Run("crude oil rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/series?sources=crude_oil", nil)
		rec := httptest.NewRecorder()
		_, ok := v.ValidateSources(rec, req, "sources", allowed, allowed)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("only commas selects nothing", func(t *testing.T) {
		// A present-but-blank list is a valid query for zero sources,
		// distinct from an absent parameter that takes the default.
		req := httptest.NewRequest(http.MethodGet, "/api/series?sources=,,", nil)
		rec := httptest.NewRecorder()
		got, ok := v.ValidateSources(rec, req, "sources", allowed, allowed)
		require.True(t, ok)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
