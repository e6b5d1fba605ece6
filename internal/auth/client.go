package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
)

const clientAudience = "client-portal"

// ErrInvalidClientToken is returned for missing, expired or forged portal tokens.
var ErrInvalidClientToken = fmt.Errorf("auth: invalid client token: %w", httpx.ErrUnauthorized)

// ClientTokens issues and verifies bearer tokens for the client portal.
// The token subject is the customer id.
type ClientTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewClientTokens constructs ClientTokens.
func NewClientTokens(secret string, ttl time.Duration) *ClientTokens {
	return &ClientTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for customerID.
func (t *ClientTokens) Issue(customerID int64) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(customerID, 10),
		Audience:  jwt.ClaimStrings{clientAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign client token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies raw and returns the customer id it was issued for.
func (t *ClientTokens) Parse(raw string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithAudience(clientAudience), jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, ErrInvalidClientToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidClientToken
	}
	return id, nil
}

type clientContextKey struct{}

// ClientFromContext returns the customer id authenticated by RequireClient.
func ClientFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(clientContextKey{}).(int64)
	return id, ok
}

// RequireClient validates the bearer token and that its subject matches the
// URL parameter param. A missing or invalid token is 401, a token for another
// customer is 403.
func (t *ClientTokens) RequireClient(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "bearer token required")
				return
			}
			customerID, err := t.Parse(raw)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			requested, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || requested != customerID {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "Acceso denegado")
				return
			}
			ctx := context.WithValue(r.Context(), clientContextKey{}, customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
