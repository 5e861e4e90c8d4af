package products

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palengke-app/palengke/internal/observability"
	"github.com/palengke-app/palengke/internal/platform/httpx"
	"github.com/palengke-app/palengke/internal/table"
)

type mockRepository struct {
	products map[int64]*Product
	nextID   int64
}

func newMockRepository(seed ...Product) *mockRepository {
	m := &mockRepository{products: make(map[int64]*Product), nextID: 1}
	for _, p := range seed {
		copied := p
		copied.ID = m.nextID
		m.products[m.nextID] = &copied
		m.nextID++
	}
	return m
}

func (m *mockRepository) List(ctx context.Context) ([]Product, error) {
	var out []Product
	for i := int64(1); i < m.nextID; i++ {
		if p, ok := m.products[i]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, p Product) (int64, error) {
	for _, existing := range m.products {
		if existing.SKU == p.SKU {
			return 0, fmt.Errorf("%w: sku %s", httpx.ErrDuplicate, p.SKU)
		}
	}
	id := m.nextID
	m.nextID++
	p.ID = id
	m.products[id] = &p
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	p, ok := m.products[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["is_active"].(bool); ok {
		p.IsActive = v
	}
	if v, ok := updates["price"].(float64); ok {
		p.Price = v
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func seedCatalog() []Product {
	now := time.Now()
	return []Product{
		{SKU: "DM-001", Name: "Dried mangoes", Category: "Snacks", Price: 150, Stock: 120, IsActive: true, CreatedAt: now},
		{SKU: "BC-001", Name: "Banana chips", Category: "Snacks", Price: 80, Stock: 200, IsActive: true, CreatedAt: now},
		{SKU: "CV-001", Name: "Coconut vinegar", Category: "Pantry", Price: 65, Stock: 80, IsActive: true, CreatedAt: now},
	}
}

func newTestServer(repo Repository) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(nullWriter{}, nil))
	h := NewHandler(logger, NewService(repo, nil), observability.NewMetrics())
	r := chi.NewRouter()
	h.MountRoutes(r)
	return httptest.NewServer(r)
}

func TestListAppliesQueryParams(t *testing.T) {
	repo := newMockRepository(seedCatalog()...)
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/products?filter.category=Snacks&sort_by=price&order=desc")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data       []table.Row `json:"data"`
		Total      int         `json:"total"`
		TotalPages int         `json:"total_pages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	require.Equal(t, 2, envelope.Total)
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, "Dried mangoes", envelope.Data[0]["name"])
	assert.Equal(t, "Banana chips", envelope.Data[1]["name"])
}

func TestListSearchMatchesSubstring(t *testing.T) {
	repo := newMockRepository(seedCatalog()...)
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/products?search=vinegar")
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Data []table.Row `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "CV-001", envelope.Data[0]["sku"])
}

func TestBulkDeactivate(t *testing.T) {
	repo := newMockRepository(seedCatalog()...)
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/products/bulk/deactivate", "application/json",
		strings.NewReader(`{"ids":[1,3]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Dispatched string `json:"dispatched"`
		Selected   int    `json:"selected"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "deactivate", result.Dispatched)
	assert.Equal(t, 2, result.Selected)

	assert.False(t, repo.products[1].IsActive)
	assert.True(t, repo.products[2].IsActive)
	assert.False(t, repo.products[3].IsActive)
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	repo := newMockRepository(seedCatalog()...)
	srv := newTestServer(repo)
	defer srv.Close()

	body := `{"sku":"DM-001","name":"Dried mangoes again","category":"Snacks","price":120,"stock":10}`
	resp, err := http.Post(srv.URL+"/products", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
