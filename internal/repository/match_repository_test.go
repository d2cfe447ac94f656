package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/repository"
	"github.com/oggyb/matchmaking-core/internal/testutil"
)

func TestCanonicalPair(t *testing.T) {
	a, b := repository.CanonicalPair("zed", "amy")
	assert.Equal(t, "amy", a)
	assert.Equal(t, "zed", b)

	a, b = repository.CanonicalPair("amy", "zed")
	assert.Equal(t, "amy", a)
	assert.Equal(t, "zed", b)
}

func TestMatchCreateIsCanonicalAndUnique(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repo := repository.NewMatchRepository(database)

	m, err := repo.Create(ctx, "bob", "alice", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "alice", m.User1ID)
	assert.Equal(t, "bob", m.User2ID)
	assert.Equal(t, "alice", m.Other("bob"))

	// either order collides with the same canonical row
	_, err = repo.Create(ctx, "alice", "bob", time.Time{})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = repo.Create(ctx, "bob", "alice", time.Time{})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	var count int64
	require.NoError(t, database.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByPair(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, m.ID, found.ID)
}

func TestMatchDeleteByPair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(testutil.NewDB(t))

	_, err := repo.Create(ctx, "a", "b", time.Time{})
	require.NoError(t, err)

	removed, err := repo.DeleteByPair(ctx, "b", "a")
	require.NoError(t, err)
	assert.True(t, removed)

	exists, err := repo.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByPair(ctx, "a", "b")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	removed, err = repo.DeleteByPair(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMatchListForUserPagination(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repo := repository.NewMatchRepository(database)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, other := range []string{"a", "z", "m"} {
		u1, u2 := repository.CanonicalPair("me", other)
		row := db.Match{ID: other + "-match", User1ID: u1, User2ID: u2, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, database.Create(&row).Error)
	}
	_, err := repo.Create(ctx, "x", "y", time.Time{})
	require.NoError(t, err)

	page1, next, err := repo.ListForUser(ctx, "me", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "m", page1[0].Other("me"))
	assert.Equal(t, "z", page1[1].Other("me"))

	page2, next, err := repo.ListForUser(ctx, "me", next, 2)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, page2, 1)
	assert.Equal(t, "a", page2[0].Other("me"))
}
