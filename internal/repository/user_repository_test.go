package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/repository"
	"github.com/oggyb/matchmaking-core/internal/testutil"
)

func TestUserConsumeSuperLike(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	testutil.CreateUser(t, database, db.User{ID: "u1", SuperLikesCount: 1})
	repo := repository.NewUserRepository(database)

	ok, err := repo.ConsumeSuperLike(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeSuperLike(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "balance is empty")

	u, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, u.SuperLikesCount)
}

func TestUserTopUpsAndPlan(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	testutil.CreateUser(t, database, db.User{ID: "u1"})
	repo := repository.NewUserRepository(database)

	require.NoError(t, repo.AddSuperLikes(ctx, "u1", 5))
	require.NoError(t, repo.AddHighlights(ctx, "u1", 2))
	require.NoError(t, repo.SetPlan(ctx, "u1", "sangam"))

	ok, err := repo.ConsumeHighlight(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, u.SuperLikesCount)
	assert.Equal(t, 1, u.MessageHighlightsCount)
	assert.Equal(t, "sangam", u.AccountStatus)
}

func TestUserUnknown(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewDB(t))

	_, err := repo.Get(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.AddSuperLikes(ctx, "ghost", 1), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.SetPlan(ctx, "ghost", "free"), gorm.ErrRecordNotFound)

	ok, err := repo.ConsumeSuperLike(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurchaseRecordIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPurchaseRepository(testutil.NewDB(t))

	created, err := repo.Record(ctx, &db.Purchase{ID: "pay_1", UserID: "u1", ItemType: "superlikes", Count: 5})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Record(ctx, &db.Purchase{ID: "pay_1", UserID: "u1", ItemType: "superlikes", Count: 5})
	require.NoError(t, err)
	assert.False(t, created)
}
