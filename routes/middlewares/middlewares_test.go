package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbolis/quick-forms/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserID(t *testing.T) {
	assert.Zero(t, UserID(context.Background()))
	assert.Equal(t, int64(7), UserID(WithUserID(context.Background(), 7)))
}

func TestAuthenticated(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	var seen int64
	h := Authenticated(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
	}))

	token, err := tokens.Issue(42)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), seen)

	other, err := auth.NewTokens("other-secret", time.Hour).Issue(42)
	require.NoError(t, err)

	for _, header := range []string{"", "Bearer", "Basic " + token, "Bearer " + other} {
		seen = 0
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
		assert.Zero(t, seen)
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
