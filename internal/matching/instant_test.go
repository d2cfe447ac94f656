package matching_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchmaking-core/internal/db"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/notify"
)

func TestInstantMatchConfirmsPendingLike(t *testing.T) {
	f := newFixture(t)
	f.users(t, "sangam", "me")
	f.users(t, "free", "them")
	f.mustSwipe(t, "them", "me", db.ActionLike)

	res, err := f.engine.InstantMatch(context.Background(), "me", "them")
	require.NoError(t, err)
	assert.True(t, res.LikeRecorded)
	require.NotNil(t, res.Match)
	assert.Equal(t, "me", res.Match.User1ID)
	assert.Equal(t, "them", res.Match.User2ID)

	assert.Equal(t, int64(1), f.countSwipes(t, "me", "them"))
	assert.Equal(t, 1, f.stats(t, "me", f.today()).SwipesUsed)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.SourceInstant, events[0].Source)
}

func TestInstantMatchRules(t *testing.T) {
	ctx := context.Background()

	t.Run("plan below sangam", func(t *testing.T) {
		f := newFixture(t)
		f.users(t, "sparsh", "me", "them")
		f.mustSwipe(t, "them", "me", db.ActionLike)

		_, err := f.engine.InstantMatch(ctx, "me", "them")
		assert.ErrorIs(t, err, svcErr.ErrPremiumRequired)
	})

	t.Run("unverified caller", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, db.User{ID: "me", AccountStatus: "samarpan"})
		f.users(t, "free", "them")
		f.mustSwipe(t, "them", "me", db.ActionLike)

		_, err := f.engine.InstantMatch(ctx, "me", "them")
		assert.ErrorIs(t, err, svcErr.ErrVerificationRequired)
	})

	t.Run("target has not liked", func(t *testing.T) {
		f := newFixture(t)
		f.users(t, "sangam", "me", "them")
		f.mustSwipe(t, "them", "me", db.ActionPass)

		_, err := f.engine.InstantMatch(ctx, "me", "them")
		assert.ErrorIs(t, err, svcErr.ErrNoReciprocalLike)
		assert.Zero(t, f.countMatches(t))
	})

	t.Run("caller passed earlier", func(t *testing.T) {
		f := newFixture(t)
		f.users(t, "sangam", "me", "them")
		f.mustSwipe(t, "me", "them", db.ActionPass)
		f.mustSwipe(t, "them", "me", db.ActionLike)

		_, err := f.engine.InstantMatch(ctx, "me", "them")
		assert.ErrorIs(t, err, svcErr.ErrAlreadySwiped)
		assert.Zero(t, f.countMatches(t))
	})

	t.Run("already matched", func(t *testing.T) {
		f := newFixture(t)
		f.users(t, "sangam", "me", "them")
		f.mustSwipe(t, "them", "me", db.ActionLike)
		require.True(t, f.mustSwipe(t, "me", "them", db.ActionLike).IsMatch)

		_, err := f.engine.InstantMatch(ctx, "me", "them")
		require.ErrorIs(t, err, svcErr.ErrMatchAlreadyExists)
		assert.Equal(t, 409, svcErr.HTTPStatus(err))
		assert.Equal(t, int64(1), f.countMatches(t))
	})

	t.Run("unknown target", func(t *testing.T) {
		f := newFixture(t)
		f.users(t, "sangam", "me")

		_, err := f.engine.InstantMatch(ctx, "me", "ghost")
		assert.ErrorIs(t, err, svcErr.ErrProfileNotFound)
	})
}

func TestInstantMatchKeepsExistingLike(t *testing.T) {
	f := newFixture(t)
	f.users(t, "samarpan", "me", "them")
	f.mustSwipe(t, "me", "them", db.ActionLike)
	f.mustSwipe(t, "them", "me", db.ActionLike)

	// the reciprocal swipe already matched; drop it to simulate a failed FormMatch
	require.NoError(t, f.db.Where("1 = 1").Delete(&db.Match{}).Error)

	res, err := f.engine.InstantMatch(context.Background(), "me", "them")
	require.NoError(t, err)
	assert.False(t, res.LikeRecorded)
	assert.Equal(t, 1, f.stats(t, "me", f.today()).SwipesUsed, "no extra usage for an existing like")
	assert.Equal(t, int64(1), f.countMatches(t))
}
