package customers

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
)

type mockRepository struct {
	customers map[int64]*Customer
	nextID    int64
	failList  error
	failWrite error
}

func newMockRepository() *mockRepository {
	return &mockRepository{customers: make(map[int64]*Customer), nextID: 1}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) GetByNIT(ctx context.Context, nitCI string) (*Customer, error) {
	for _, c := range m.customers {
		if c.NitCI == nitCI {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context) ([]Customer, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	out := make([]Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockRepository) Create(ctx context.Context, c Customer) (int64, error) {
	if m.failWrite != nil {
		return 0, m.failWrite
	}
	c.ID = m.nextID
	m.nextID++
	m.customers[c.ID] = &c
	return c.ID, nil
}

func TestServiceCreate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), CreateCustomerRequest{CompanyName: " Acme ", NitCI: "123"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Acme", c.CompanyName)

	_, err = svc.Create(context.Background(), CreateCustomerRequest{CompanyName: "Other", NitCI: "123"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
	assert.Len(t, repo.customers, 1)
}

func TestServiceCreateStorageFailure(t *testing.T) {
	repo := newMockRepository()
	repo.failWrite = errors.New("connection reset")
	_, err := NewService(repo).Create(context.Background(), CreateCustomerRequest{CompanyName: "Acme", NitCI: "123"})
	require.Error(t, err)
	assert.False(t, httpx.IsClientError(err))
}

func TestServiceFindByNIT(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	_, err := svc.Create(context.Background(), CreateCustomerRequest{CompanyName: "Acme", NitCI: "123"})
	require.NoError(t, err)

	c, err := svc.FindByNIT(context.Background(), " 123 ")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.CompanyName)

	_, err = svc.FindByNIT(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(repo Repository, perms []string) http.Handler {
	h := NewHandler(testLogger(), NewService(repo), rbac.Middleware{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 2, Role: "sales_rep", Permissions: perms})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r)
	return r
}

func TestHandlerCreateAndList(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo, shared.SalesRepScopes())

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"company_name":"Acme","nit_ci":"123"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.JSONEq(t, `{"id":1}`, res.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"company_name":"Acme 2","nit_ci":"123"}`))
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusConflict, res.Code)

	req = httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"company_name":"","nit_ci":"9"}`))
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"nit_ci":"123"`)
}

func TestHandlerForbiddenWithoutPermission(t *testing.T) {
	router := newTestRouter(newMockRepository(), nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestHandlerListStorageFailure(t *testing.T) {
	repo := newMockRepository()
	repo.failList = errors.New("db down")
	router := newTestRouter(repo, shared.SalesRepScopes())
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}
