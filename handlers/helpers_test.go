package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/poker-league/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrGameNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", services.ErrStandingNotFound), http.StatusNotFound},
		{services.ErrGameFull, http.StatusConflict},
		{services.ErrRegistrationClosed, http.StatusConflict},
		{services.ErrInvalidPlacements, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: op: %w", services.ErrStorageFailure, errors.New("disk")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestStorageErrorsDoNotLeakDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("%w: list games: %w", services.ErrStorageFailure, errors.New("pq: password authentication failed"))
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestGetIDFromURL(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("gameID", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := getIDFromURL(withParam("42"), "gameID")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := getIDFromURL(withParam(bad), "gameID")
		assert.Error(t, err, bad)
	}
}

func TestReadJSON(t *testing.T) {
	var dst struct {
		Paid bool `json:"paid"`
	}

	tests := []struct {
		body    string
		wantErr string
	}{
		{`{"paid": true}`, ""},
		{``, "body must not be empty"},
		{`{"paid": true`, "badly-formed"},
		{`{"unknown": 1}`, "unknown key"},
		{`{"paid": "yes"}`, "incorrect JSON type"},
		{`{"paid": true}{"paid": false}`, "single JSON value"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		err := readJSON(rec, req, &dst)
		if tt.wantErr == "" {
			assert.NoError(t, err)
			assert.True(t, dst.Paid)
			continue
		}
		require.Error(t, err, tt.body)
		assert.Contains(t, err.Error(), tt.wantErr)
	}
}
