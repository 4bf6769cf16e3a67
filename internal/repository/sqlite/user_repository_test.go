package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market/internal/domain"
	"campus-market/internal/repository"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	repo := NewUserRepository(setupDB(t))
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestUserCreateGetRoundTrip(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	user := &domain.User{
		ID:           "u1",
		Name:         "Amit Kumar",
		Email:        "amit@x.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user.Name, got.Name)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(user.CreatedAt))

	byEmail, err := repo.GetByEmail(ctx, "amit@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
}

func TestUserDuplicateEmail(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &domain.User{ID: "u2", Name: "B", Email: "a@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserGetMissing(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "nope@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserUpdate(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	user := &domain.User{ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	user.Name = "Alice"
	user.Email = "alice@x.com"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@x.com", got.Email)

	err = repo.Update(ctx, &domain.User{ID: "ghost", Name: "G", Email: "g@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserUpdateDuplicateEmail(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "h"}))
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u2", Name: "B", Email: "b@x.com", PasswordHash: "h"}))

	err := repo.Update(ctx, &domain.User{ID: "u2", Name: "B", Email: "a@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserList(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "h", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u2", Name: "B", Email: "b@x.com", PasswordHash: "h", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ID) // newest first
}
