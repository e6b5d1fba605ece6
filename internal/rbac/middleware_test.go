package rbac_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
	_ "github.com/genuino/cotizaciones/testing"
)

type mockRepo struct {
	grants map[int64]rbac.Grant
	err    error
}

func (m *mockRepo) GrantFor(ctx context.Context, userID int64) (rbac.Grant, error) {
	if m.err != nil {
		return rbac.Grant{}, m.err
	}
	g, ok := m.grants[userID]
	if !ok {
		return rbac.Grant{}, rbac.ErrNotFound
	}
	return g, nil
}

func newMiddleware(repo rbac.Repository) rbac.Middleware {
	return rbac.Middleware{Service: rbac.NewService(repo)}
}

func requestAs(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/1/approve", nil)
	if userID == "" {
		return req
	}
	sess := &shared.Session{ID: "s1"}
	sess.SetUser(userID)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireAny(t *testing.T) {
	repo := &mockRepo{grants: map[int64]rbac.Grant{
		1: {UserID: 1, Role: rbac.RoleSalesManager, IsActive: true},
		2: {UserID: 2, Role: rbac.RoleSalesRep, IsActive: true},
		3: {UserID: 3, Role: rbac.RoleSalesManager, IsActive: false},
	}}
	mw := newMiddleware(repo)

	var seen shared.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.RequireAny(shared.PermQuoteApprove)(next)

	tests := []struct {
		name   string
		user   string
		status int
	}{
		{name: "manager", user: "1", status: http.StatusNoContent},
		{name: "rep", user: "2", status: http.StatusForbidden},
		{name: "inactive", user: "3", status: http.StatusUnauthorized},
		{name: "anonymous", user: "", status: http.StatusUnauthorized},
		{name: "unknown", user: "99", status: http.StatusUnauthorized},
		{name: "garbage", user: "abc", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, requestAs(tt.user))
			assert.Equal(t, tt.status, res.Code)
		})
	}

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs("1"))
	assert.Equal(t, int64(1), seen.UserID)
	assert.Equal(t, string(rbac.RoleSalesManager), seen.Role)
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	repo := &mockRepo{grants: map[int64]rbac.Grant{
		2: {UserID: 2, Role: rbac.RoleSalesRep, IsActive: true},
	}}
	mw := newMiddleware(repo)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	res := httptest.NewRecorder()
	mw.RequireAll(shared.PermQuoteCreate, shared.PermCustomerView)(next).ServeHTTP(res, requestAs("2"))
	assert.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	mw.RequireAll(shared.PermQuoteCreate, shared.PermReportView)(next).ServeHTTP(res, requestAs("2"))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyStorageFailure(t *testing.T) {
	mw := newMiddleware(&mockRepo{err: errors.New("db down")})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	res := httptest.NewRecorder()
	mw.RequireAny(shared.PermQuoteView)(next).ServeHTTP(res, requestAs("1"))
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestParseRole(t *testing.T) {
	r, err := rbac.ParseRole("Jefe de Ventas")
	assert.NoError(t, err)
	assert.Equal(t, rbac.RoleSalesManager, r)

	r, err = rbac.ParseRole("sales_rep")
	assert.NoError(t, err)
	assert.Equal(t, "Vendedor", r.Label())

	_, err = rbac.ParseRole("admin")
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
}
