package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/palengke-app/palengke/internal/platform/httpx"
)

type mockRepository struct {
	users  map[int64]*User
	hashes map[int64]string
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[int64]*User{}, hashes: map[int64]string{}, nextID: 1}
}

func (m *mockRepository) List(ctx context.Context) ([]User, error) {
	var out []User
	for i := int64(1); i < m.nextID; i++ {
		if u, ok := m.users[i]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, u User, passwordHash string) (int64, error) {
	id := m.nextID
	m.nextID++
	u.ID = id
	m.users[id] = &u
	m.hashes[id] = passwordHash
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	u, ok := m.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["is_active"].(bool); ok {
		u.IsActive = v
	}
	if v, ok := updates["name"].(string); ok {
		u.Name = v
	}
	return nil
}

func (m *mockRepository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	if _, ok := m.users[id]; !ok {
		return httpx.ErrNotFound
	}
	m.hashes[id] = hash
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "aling.nena@example.ph",
		Name:     "Aling Nena",
		Role:     "staff",
		Password: "sariling-sikreto",
	}, 1)
	require.NoError(t, err)
	require.True(t, u.IsActive)

	hash := repo.hashes[u.ID]
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "sariling-sikreto", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("sariling-sikreto")))
}

func TestResetPasswordRejectsShort(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "mang.tomas@example.ph",
		Name:     "Mang Tomas",
		Role:     "admin",
		Password: "unang-password",
	}, 1)
	require.NoError(t, err)
	before := repo.hashes[u.ID]

	err = svc.ResetPassword(context.Background(), u.ID, "short", 1)
	require.Error(t, err)
	assert.Equal(t, before, repo.hashes[u.ID])

	require.NoError(t, svc.ResetPassword(context.Background(), u.ID, "bagong-password", 1))
	assert.NotEqual(t, before, repo.hashes[u.ID])
}

func TestSetActiveTogglesAccounts(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	var ids []int64
	for _, email := range []string{"a@example.ph", "b@example.ph"} {
		u, err := svc.Create(context.Background(), CreateUserRequest{
			Email: email, Name: "Test", Role: "customer", Password: "password-123",
		}, 1)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	require.NoError(t, svc.SetActive(context.Background(), ids, false, 1))
	for _, id := range ids {
		assert.False(t, repo.users[id].IsActive)
	}

	err := svc.SetActive(context.Background(), []int64{99}, true, 1)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
