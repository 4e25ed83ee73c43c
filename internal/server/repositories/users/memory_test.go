package users

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	saved, err := repo.Save(ctx, &models.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID)

	_, err = repo.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, common.ErrorNotFound, "usernames are case-sensitive")
}

func TestMemoryRepository_Conflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Save(ctx, &models.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &models.User{Username: "alice", Email: "other@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	_, err = repo.Save(ctx, &models.User{Username: "bob", Email: "a@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	_, err = repo.Save(ctx, &models.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrUsernameTaken, "username conflict is reported first")
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Save(ctx, &models.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"})
	require.NoError(t, err)

	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	u.PasswordHash = "mutated"

	again, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", again.PasswordHash)
}

func TestMemoryRepository_UpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	saved, err := repo.Save(ctx, &models.User{Username: "alice", Email: "a@x.io", PasswordHash: "old"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePasswordHash(ctx, saved.ID, "new"))

	u, err := repo.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "new", u.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, "missing", "x"), common.ErrorNotFound)
}

func TestMemoryRepository_ConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	const n = 32
	var ok, taken atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Save(ctx, &models.User{Username: "alice", Email: fmt.Sprintf("a%d@x.io", i), PasswordHash: "h"})
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, common.ErrUsernameTaken):
				taken.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(n-1), taken.Load())
}

func TestMemoryRepository_SaveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryRepository().Save(ctx, &models.User{Username: "alice", Email: "a@x.io"})
	assert.ErrorIs(t, err, context.Canceled)
}
