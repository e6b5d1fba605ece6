package catalog

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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
)

type mockRepository struct {
	types      map[int64]*Type
	items      map[int64]*Item
	quoteUsage map[int64]bool
	nextID     int64
	failUsage  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		types:      make(map[int64]*Type),
		items:      make(map[int64]*Item),
		quoteUsage: make(map[int64]bool),
		nextID:     1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) ListTypes(ctx context.Context) ([]Type, error) {
	out := []Type{}
	for _, t := range m.types {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockRepository) CreateType(ctx context.Context, name string) (int64, error) {
	for _, t := range m.types {
		if t.Name == name {
			return 0, ErrTypeExists
		}
	}
	id := m.nextID
	m.nextID++
	m.types[id] = &Type{ID: id, Name: name}
	return id, nil
}

func (m *mockRepository) UpdateType(ctx context.Context, id int64, name string) error {
	t, ok := m.types[id]
	if !ok {
		return ErrTypeNotFound
	}
	for _, other := range m.types {
		if other.ID != id && other.Name == name {
			return ErrTypeExists
		}
	}
	t.Name = name
	return nil
}

func (m *mockRepository) TypeInUse(ctx context.Context, id int64) (bool, error) {
	if m.failUsage != nil {
		return false, m.failUsage
	}
	if m.quoteUsage[id] {
		return true, nil
	}
	for _, item := range m.items {
		if item.TypeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) DeleteType(ctx context.Context, id int64) error {
	if _, ok := m.types[id]; !ok {
		return ErrTypeNotFound
	}
	delete(m.types, id)
	return nil
}

func (m *mockRepository) ListItems(ctx context.Context) ([]Item, error) {
	out := []Item{}
	for _, item := range m.items {
		out = append(out, *item)
	}
	return out, nil
}

func (m *mockRepository) GetItem(ctx context.Context, id int64) (*Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (m *mockRepository) CreateItem(ctx context.Context, item Item) (int64, error) {
	if _, ok := m.types[item.TypeID]; !ok {
		return 0, ErrUnknownTypeID
	}
	for _, other := range m.items {
		if other.TypeID == item.TypeID && other.Code == item.Code {
			return 0, ErrItemExists
		}
	}
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = &item
	return item.ID, nil
}

func (m *mockRepository) UpdateItem(ctx context.Context, item Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	m.items[item.ID] = &item
	return nil
}

func (m *mockRepository) DeleteItem(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func newService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDeleteTypeGuardsReferences(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := newService(repo)

	withItem, err := svc.CreateType(ctx, TypeRequest{Name: "Productos/Servicios"})
	require.NoError(t, err)
	withQuote, err := svc.CreateType(ctx, TypeRequest{Name: "Gastos de Importación"})
	require.NoError(t, err)
	unused, err := svc.CreateType(ctx, TypeRequest{Name: "Otros"})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, ItemRequest{TypeID: withItem, Code: "P-1", Description: "Bomba", UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)
	repo.quoteUsage[withQuote] = true

	err = svc.DeleteType(ctx, withItem)
	assert.ErrorIs(t, err, ErrTypeInUse)
	assert.ErrorIs(t, err, httpx.ErrConflict)
	assert.Contains(t, repo.types, withItem)

	assert.ErrorIs(t, svc.DeleteType(ctx, withQuote), ErrTypeInUse)
	assert.Contains(t, repo.types, withQuote)

	assert.NoError(t, svc.DeleteType(ctx, unused))
	assert.NotContains(t, repo.types, unused)

	assert.ErrorIs(t, svc.DeleteType(ctx, 999), httpx.ErrNotFound)
}

func TestDeleteTypeUsageCheckFailure(t *testing.T) {
	repo := newMockRepository()
	repo.failUsage = errors.New("db down")
	err := newService(repo).DeleteType(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, httpx.IsClientError(err))
}

func TestCreateTypeDuplicate(t *testing.T) {
	svc := newService(newMockRepository())
	_, err := svc.CreateType(context.Background(), TypeRequest{Name: "Productos"})
	require.NoError(t, err)
	_, err = svc.CreateType(context.Background(), TypeRequest{Name: " Productos "})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
	_, err = svc.CreateType(context.Background(), TypeRequest{Name: "  "})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateItemValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMockRepository())
	typeID, err := svc.CreateType(ctx, TypeRequest{Name: "Productos"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  ItemRequest
		want error
	}{
		{name: "negative price", req: ItemRequest{TypeID: typeID, Code: "A", Description: "a", UnitPrice: decimal.NewFromInt(-1)}, want: httpx.ErrValidation},
		{name: "three decimals", req: ItemRequest{TypeID: typeID, Code: "A", Description: "a", UnitPrice: decimal.RequireFromString("1.234")}, want: httpx.ErrValidation},
		{name: "missing code", req: ItemRequest{TypeID: typeID, Description: "a", UnitPrice: decimal.NewFromInt(1)}, want: httpx.ErrValidation},
		{name: "unknown type", req: ItemRequest{TypeID: 99, Code: "A", Description: "a", UnitPrice: decimal.NewFromInt(1)}, want: httpx.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = svc.CreateItem(ctx, ItemRequest{TypeID: typeID, Code: "A", Description: "a", UnitPrice: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, ItemRequest{TypeID: typeID, Code: "A", Description: "b", UnitPrice: decimal.NewFromInt(2)})
	assert.ErrorIs(t, err, ErrItemExists)
}

func TestHandlerRoutes(t *testing.T) {
	repo := newMockRepository()
	svc := newService(repo)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, rbac.Middleware{})

	serve := func(perms []string, method, path, body string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 1, Permissions: perms})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		h.MountRoutes(r)
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		return res
	}

	manager := shared.SalesManagerScopes()
	rep := shared.SalesRepScopes()

	res := serve(manager, http.MethodPost, "/catalog-types", `{"name":"Productos"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = serve(rep, http.MethodPost, "/catalog-types", `{"name":"Otro"}`)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = serve(manager, http.MethodPost, "/catalog", `{"type_id":1,"code":"P-1","description":"Bomba","unit_price":"150.50"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = serve(rep, http.MethodGet, "/catalog/2", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"unit_price":"150.5"`)

	res = serve(manager, http.MethodDelete, "/catalog-types/1", "")
	assert.Equal(t, http.StatusConflict, res.Code)

	res = serve(manager, http.MethodDelete, "/catalog/2", "")
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = serve(manager, http.MethodDelete, "/catalog-types/1", "")
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = serve(manager, http.MethodGet, "/catalog/abc", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
