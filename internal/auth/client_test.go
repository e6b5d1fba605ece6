package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientTokensRoundTrip(t *testing.T) {
	tokens := NewClientTokens("portal-secret", time.Hour)
	raw, expiresAt, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	id, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = NewClientTokens("other-secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidClientToken)
}

func TestClientTokensExpire(t *testing.T) {
	tokens := NewClientTokens("portal-secret", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	raw, _, err := tokens.Issue(7)
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidClientToken)
}

func TestRequireClient(t *testing.T) {
	tokens := NewClientTokens("portal-secret", time.Hour)
	own, _, err := tokens.Issue(5)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.With(tokens.RequireClient("clientID")).Get("/client/{clientID}/quotes", func(w http.ResponseWriter, r *http.Request) {
		id, ok := ClientFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, int64(5), id)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "own", path: "/client/5/quotes", header: "Bearer " + own, status: http.StatusOK},
		{name: "other client", path: "/client/6/quotes", header: "Bearer " + own, status: http.StatusForbidden},
		{name: "missing", path: "/client/5/quotes", status: http.StatusUnauthorized},
		{name: "garbage", path: "/client/5/quotes", header: "Bearer abc", status: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/client/5/quotes", header: "Basic " + own, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			res := httptest.NewRecorder()
			r.ServeHTTP(res, req)
			assert.Equal(t, tt.status, res.Code)
		})
	}
}
