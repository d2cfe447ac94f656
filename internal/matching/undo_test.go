package matching_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchmaking-core/internal/db"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/matching"
)

func TestUndoRequiresPlan(t *testing.T) {
	f := newFixture(t)
	f.users(t, "free", "a", "b")
	f.mustSwipe(t, "a", "b", db.ActionLike)

	_, err := f.engine.Undo(context.Background(), "a", "b")
	require.ErrorIs(t, err, svcErr.ErrUndoNotAllowed)
	assert.Equal(t, 403, svcErr.HTTPStatus(err))
	assert.Equal(t, int64(1), f.countSwipes(t, "a", "b"), "forbidden undo leaves the swipe")
}

func TestUndoWithoutSwipe(t *testing.T) {
	f := newFixture(t)
	f.users(t, "sparsh", "a", "b")

	_, err := f.engine.Undo(context.Background(), "a", "b")
	require.ErrorIs(t, err, svcErr.ErrSwipeNotFound)
	assert.Equal(t, 404, svcErr.HTTPStatus(err))
}

func TestUndoRestoresQuotaAndAllowsReswipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users(t, "sparsh", "a", "b")

	f.mustSwipe(t, "a", "b", db.ActionPass)
	require.Equal(t, 1, f.stats(t, "a", f.today()).SwipesUsed)

	res, err := f.engine.Undo(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, db.ActionPass, res.UndoneAction)
	assert.False(t, res.MatchRemoved)
	assert.False(t, res.Partial)
	assert.Empty(t, res.FailedSteps)

	assert.Zero(t, f.countSwipes(t, "a", "b"))
	assert.Zero(t, f.stats(t, "a", f.today()).SwipesUsed)

	again := f.mustSwipe(t, "a", "b", db.ActionLike)
	assert.Equal(t, db.ActionLike, again.Swipe.Action)
	assert.Equal(t, 1, f.stats(t, "a", f.today()).SwipesUsed)

	_, err = f.engine.Undo(ctx, "b", "a")
	assert.ErrorIs(t, err, svcErr.ErrSwipeNotFound, "undo only touches the caller's own swipes")
}

func TestUndoRetractsMatchButKeepsCounterpartLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users(t, "sangam", "a", "b")

	f.mustSwipe(t, "b", "a", db.ActionLike)
	first := f.mustSwipe(t, "a", "b", db.ActionLike)
	require.True(t, first.IsMatch)

	res, err := f.engine.Undo(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, res.MatchRemoved)
	assert.Zero(t, f.countMatches(t))
	assert.Equal(t, int64(1), f.countSwipes(t, "b", "a"))

	liked, _, err := f.engine.ListLikedYou(ctx, "a", nil, 10)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, "b", liked[0].SwiperID)

	again := f.mustSwipe(t, "a", "b", db.ActionLike)
	require.True(t, again.IsMatch)
	assert.Equal(t, "a", again.Match.User1ID)
	assert.Equal(t, "b", again.Match.User2ID)
	assert.Equal(t, int64(1), f.countMatches(t))
}

func TestUndoSuperlikeRefundsBalance(t *testing.T) {
	f := newFixture(t)
	f.user(t, db.User{ID: "a", AccountStatus: "sangam", SuperLikesCount: 1})
	f.users(t, "free", "b")

	f.mustSwipe(t, "a", "b", db.ActionSuperlike)
	require.Equal(t, 0, f.loadUser(t, "a").SuperLikesCount)

	res, err := f.engine.Undo(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, db.ActionSuperlike, res.UndoneAction)
	assert.False(t, res.Partial)

	assert.Equal(t, 1, f.loadUser(t, "a").SuperLikesCount)
	day := f.stats(t, "a", f.today())
	assert.Zero(t, day.SwipesUsed)
	assert.Zero(t, day.SuperlikesUsed)
}

func TestUndoDecrementsTheDayTheSwipeWasCounted(t *testing.T) {
	f := newFixture(t)
	f.users(t, "sparsh", "a", "b", "c")

	f.mustSwipe(t, "a", "b", db.ActionLike)
	yesterday := f.today()

	f.clock.Advance(24 * time.Hour)
	f.mustSwipe(t, "a", "c", db.ActionLike)

	_, err := f.engine.Undo(context.Background(), "a", "b")
	require.NoError(t, err)

	assert.Zero(t, f.stats(t, "a", yesterday).SwipesUsed)
	assert.Equal(t, 1, f.stats(t, "a", f.today()).SwipesUsed)
}

func TestUndoCounterNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	f.users(t, "sparsh", "a", "b")

	// a swipe row without a usage row, as left by an earlier partial undo
	require.NoError(t, f.db.Create(&db.SwipeAction{
		ID: "s1", SwiperID: "a", SwipedID: "b", Action: db.ActionLike, CreatedAt: f.clock.Now(),
	}).Error)

	res, err := f.engine.Undo(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.Zero(t, f.stats(t, "a", f.today()).SwipesUsed)
}

func TestUndoReportsPartialBookkeeping(t *testing.T) {
	f := newFixture(t)
	f.users(t, "sparsh", "a", "b")
	f.mustSwipe(t, "a", "b", db.ActionLike)

	f.redis.Close()

	res, err := f.engine.Undo(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Equal(t, []string{matching.StepInvalidateCache}, res.FailedSteps)

	assert.Zero(t, f.countSwipes(t, "a", "b"), "the swipe stays undone")
	assert.Zero(t, f.stats(t, "a", f.today()).SwipesUsed)
}
