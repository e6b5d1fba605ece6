package rbac

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(normalizePermissions(perms), hasAnyPermission)
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(normalizePermissions(perms), hasAllPermissions)
}

// Authenticated resolves the principal without demanding a permission.
func (m Middleware) Authenticated() func(http.Handler) http.Handler {
	return m.require(nil, hasAllPermissions)
}

func (m Middleware) require(required []string, check func(granted, required []string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				userID, found := m.currentUserID(r)
				if !found {
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
					return
				}
				resolved, err := m.Service.Resolve(r.Context(), userID)
				if err != nil {
					switch {
					case errors.Is(err, httpx.ErrNotFound), errors.Is(err, httpx.ErrForbidden):
						httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
					default:
						if m.Logger != nil {
							m.Logger.Error("rbac resolve principal", slog.Any("error", err))
						}
						httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
					}
					return
				}
				principal = resolved
				r = r.WithContext(shared.ContextWithPrincipal(r.Context(), principal))
			}
			if !check(principal.Permissions, required) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPermission(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func hasAllPermissions(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
