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

func swipe(t *testing.T, repo *repository.SwipeRepository, from, to, action string) *db.SwipeAction {
	t.Helper()
	s := &db.SwipeAction{SwiperID: from, SwipedID: to, Action: action}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSwipeCreateRejectsSecondSwipeOnPair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(testutil.NewDB(t))

	first := swipe(t, repo, "a", "b", db.ActionLike)
	assert.NotEmpty(t, first.ID)

	err := repo.Create(ctx, &db.SwipeAction{SwiperID: "a", SwipedID: "b", Action: db.ActionPass})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// the reverse direction is a different ordered pair
	swipe(t, repo, "b", "a", db.ActionPass)

	ok, err := repo.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSwipeHasLikedIgnoresPasses(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(testutil.NewDB(t))

	swipe(t, repo, "a", "b", db.ActionPass)
	swipe(t, repo, "c", "b", db.ActionSuperlike)

	liked, err := repo.HasLiked(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, liked)

	liked, err = repo.HasLiked(ctx, "c", "b")
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestSwipeLatestAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(testutil.NewDB(t))

	_, err := repo.Latest(ctx, "a", "b")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.True(t, repository.IsNotFound(err))

	s := swipe(t, repo, "a", "b", db.ActionLike)
	got, err := repo.Latest(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	removed, err := repo.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	// the pair can be swiped again once the row is gone
	swipe(t, repo, "a", "b", db.ActionLike)
}

func TestGetLikersExcludesPassed(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(testutil.NewDB(t))

	swipe(t, repo, "u1", "me", db.ActionLike)
	swipe(t, repo, "u2", "me", db.ActionSuperlike)
	swipe(t, repo, "u3", "me", db.ActionPass)
	// me passed u2 → excluded
	swipe(t, repo, "me", "u2", db.ActionPass)

	likers, next, err := repo.GetLikers(ctx, "me", nil, 10)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, likers, 1)
	assert.Equal(t, "u1", likers[0].SwiperID)

	count, err := repo.CountLikers(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetPendingLikersExcludesAnySwipeBack(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(testutil.NewDB(t))

	swipe(t, repo, "u1", "me", db.ActionLike)
	swipe(t, repo, "u2", "me", db.ActionLike)
	swipe(t, repo, "me", "u1", db.ActionLike) // mutual → not pending

	pending, _, err := repo.GetPendingLikers(ctx, "me", nil, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "u2", pending[0].SwiperID)
}

func TestGetLikersPagination(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repo := repository.NewSwipeRepository(database)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, from := range []string{"u1", "u2", "u3"} {
		s := &db.SwipeAction{SwiperID: from, SwipedID: "me", Action: db.ActionLike, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.Create(ctx, s))
	}

	page1, next, err := repo.GetLikers(ctx, "me", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "u3", page1[0].SwiperID)
	assert.Equal(t, "u2", page1[1].SwiperID)

	page2, next, err := repo.GetLikers(ctx, "me", next, 2)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, page2, 1)
	assert.Equal(t, "u1", page2[0].SwiperID)

	bad := "%%%"
	_, _, err = repo.GetLikers(ctx, "me", &bad, 2)
	assert.Error(t, err)
}
