package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palengke-app/palengke/internal/platform/httpx"
)

type mockRepository struct {
	items  []Item
	nextID int64
}

func (m *mockRepository) List(ctx context.Context) ([]Item, error) {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Item, error) {
	for _, it := range m.items {
		if it.ID == id {
			copied := it
			return &copied, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, item Item) (int64, error) {
	m.nextID++
	item.ID = m.nextID
	m.items = append(m.items, item)
	return item.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	for i := range m.items {
		if m.items[i].ID == id {
			if v, ok := updates["is_active"].(bool); ok {
				m.items[i].IsActive = v
			}
			if v, ok := updates["label"].(string); ok {
				m.items[i].Label = v
			}
			return nil
		}
	}
	return httpx.ErrNotFound
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return httpx.ErrNotFound
}

func TestSectionsGroupsActiveItems(t *testing.T) {
	repo := &mockRepository{items: []Item{
		{ID: 1, Label: "Orders", Path: "/orders", Section: "Commerce", Position: 1, IsActive: true},
		{ID: 2, Label: "Products", Path: "/products", Section: "Commerce", Position: 2, IsActive: true},
		{ID: 3, Label: "Legacy", Path: "/legacy", Section: "Commerce", Position: 3, IsActive: false},
		{ID: 4, Label: "Users", Path: "/users", Section: "Admin", Position: 1, IsActive: true},
	}}
	svc := NewService(repo, nil)

	sections, err := svc.Sections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "Commerce", sections[0].Name)
	assert.Len(t, sections[0].Items, 2)
	assert.Equal(t, "Admin", sections[1].Name)
	assert.Len(t, sections[1].Items, 1)
}

func TestCreateDropsUnknownIcon(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)

	it, err := svc.Create(context.Background(), CreateItemRequest{
		Label: "Geo", Icon: "not-an-icon", Path: "/geo", Section: "Tools",
	}, 1)
	require.NoError(t, err)
	assert.Empty(t, it.Icon)

	it, err = svc.Create(context.Background(), CreateItemRequest{
		Label: "Map", Icon: "map-pin", Path: "/map", Section: "Tools",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "map-pin", it.Icon)
}
