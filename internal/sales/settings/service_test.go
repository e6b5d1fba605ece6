package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
)

type mapDB struct {
	values map[string]string
	err    error
}

type valueRow struct {
	value string
	err   error
}

func (r valueRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

func (m *mapDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if m.err != nil {
		return pgconn.CommandTag{}, m.err
	}
	m.values[args[0].(string)] = args[1].(string)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mapDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (m *mapDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if m.err != nil {
		return valueRow{err: m.err}
	}
	v, ok := m.values[args[0].(string)]
	if !ok {
		return valueRow{err: pgx.ErrNoRows}
	}
	return valueRow{value: v}
}

func newTestService(conn *mapDB) *Service {
	return NewService(NewRepository(conn), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestThresholdDefaultsWhenUnset(t *testing.T) {
	svc := newTestService(&mapDB{values: map[string]string{}})
	got, err := svc.Threshold(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10000)))
}

func TestSetThresholdUpserts(t *testing.T) {
	conn := &mapDB{values: map[string]string{}}
	svc := newTestService(conn)

	_, err := svc.SetThreshold(context.Background(), "1000", 1)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", conn.values[KeyApprovalThreshold])

	_, err = svc.SetThreshold(context.Background(), "200.5", 1)
	require.NoError(t, err)
	got, err := svc.Threshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "200.5", got.String())
}

func TestSetThresholdRejectsNonNumeric(t *testing.T) {
	conn := &mapDB{values: map[string]string{KeyApprovalThreshold: "500.00"}}
	svc := newTestService(conn)

	for _, raw := range []string{"", "abc", "  ", "1000.005", "1000000000000"} {
		_, err := svc.SetThreshold(context.Background(), raw, 1)
		assert.ErrorIs(t, err, httpx.ErrValidation, raw)
	}
	assert.Equal(t, "500.00", conn.values[KeyApprovalThreshold])
}

func TestSetThresholdNeverRounds(t *testing.T) {
	conn := &mapDB{values: map[string]string{}}
	repo := NewRepository(conn)

	err := repo.SetThreshold(context.Background(), decimal.RequireFromString("1000.005"))
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, conn.values)

	require.NoError(t, repo.SetThreshold(context.Background(), decimal.RequireFromString("1000.01")))
	assert.Equal(t, "1000.01", conn.values[KeyApprovalThreshold])
}

func TestReadThresholdCorruptValue(t *testing.T) {
	_, err := ReadThreshold(context.Background(), &mapDB{values: map[string]string{KeyApprovalThreshold: "n/a"}})
	assert.ErrorIs(t, err, ErrCorruptValue)
}

func TestThresholdStorageFailure(t *testing.T) {
	svc := newTestService(&mapDB{err: errors.New("db down")})
	_, err := svc.Threshold(context.Background())
	assert.Error(t, err)
}

func TestHandlerThreshold(t *testing.T) {
	conn := &mapDB{values: map[string]string{}}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), newTestService(conn), rbac.Middleware{})

	serve := func(perms []string, method, body string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 1, Permissions: perms})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		h.MountRoutes(r)
		req := httptest.NewRequest(method, "/settings/approval-threshold", strings.NewReader(body))
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		return res
	}

	res := serve(shared.SalesManagerScopes(), http.MethodGet, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"threshold":"10000.00"}`, res.Body.String())

	res = serve(shared.SalesManagerScopes(), http.MethodPut, `{"threshold":1500}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"threshold":"1500.00"}`, res.Body.String())

	res = serve(shared.SalesManagerScopes(), http.MethodPut, `{"threshold":"mil"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = serve(shared.SalesManagerScopes(), http.MethodPut, `{}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = serve(shared.SalesRepScopes(), http.MethodPut, `{"threshold":"1"}`)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "1500.00", conn.values[KeyApprovalThreshold])
}
