package matching_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/entitlement"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/matching"
)

func TestFulfillPurchaseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users(t, "free", "a")

	p := matching.Purchase{PurchaseID: "pay_1", UserID: "a", ItemType: matching.ItemSuperlikes, Count: 5}
	res, err := f.engine.FulfillPurchase(ctx, p)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.False(t, res.Duplicate)

	res, err = f.engine.FulfillPurchase(ctx, p)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.True(t, res.Duplicate)

	assert.Equal(t, 5, f.loadUser(t, "a").SuperLikesCount)
}

func TestFulfillPurchaseItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users(t, "free", "a")

	_, err := f.engine.FulfillPurchase(ctx, matching.Purchase{PurchaseID: "h1", UserID: "a", ItemType: matching.ItemHighlights, Count: 3})
	require.NoError(t, err)
	_, err = f.engine.FulfillPurchase(ctx, matching.Purchase{PurchaseID: "p1", UserID: "a", ItemType: matching.ItemPlan, Plan: "sparsh"})
	require.NoError(t, err)

	u := f.loadUser(t, "a")
	assert.Equal(t, 3, u.MessageHighlightsCount)
	assert.Equal(t, "sparsh", u.AccountStatus)

	limit, err := f.engine.Checker().GetDailyLimit(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, testLimits.SparshDailySwipes, limit)
}

func TestFulfillPurchaseRejectsBadEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users(t, "free", "a")

	cases := map[string]matching.Purchase{
		"missing id":   {UserID: "a", ItemType: matching.ItemSuperlikes, Count: 1},
		"missing user": {PurchaseID: "x", ItemType: matching.ItemSuperlikes, Count: 1},
		"zero count":   {PurchaseID: "x", UserID: "a", ItemType: matching.ItemHighlights},
		"unknown item": {PurchaseID: "x", UserID: "a", ItemType: "boost", Count: 1},
		"unknown plan": {PurchaseID: "x", UserID: "a", ItemType: matching.ItemPlan, Plan: "gold"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.engine.FulfillPurchase(ctx, p)
			assert.Equal(t, svcErr.KindInvalidArgument, svcErr.From(err).Kind)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&db.Purchase{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFulfillPurchaseForUnknownUserRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.FulfillPurchase(ctx, matching.Purchase{PurchaseID: "pay_9", UserID: "ghost", ItemType: matching.ItemSuperlikes, Count: 1})
	require.ErrorIs(t, err, svcErr.ErrProfileNotFound)

	var n int64
	require.NoError(t, f.db.Model(&db.Purchase{}).Count(&n).Error)
	assert.Zero(t, n, "the idempotency record is not kept when the grant fails")
}

func TestUseHighlight(t *testing.T) {
	ctx := context.Background()

	t.Run("spends balance", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, db.User{ID: "a", AccountStatus: "sparsh", MessageHighlightsCount: 2})

		res, err := f.engine.UseHighlight(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 1, res.HighlightsRemaining)
		assert.Equal(t, 1, res.UsedToday)

		res, err = f.engine.UseHighlight(ctx, "a")
		require.NoError(t, err)
		assert.Zero(t, res.HighlightsRemaining)
		assert.Equal(t, 2, res.UsedToday)

		_, err = f.engine.UseHighlight(ctx, "a")
		require.ErrorIs(t, err, svcErr.ErrNoHighlightsAvailable)
		assert.Equal(t, 400, svcErr.HTTPStatus(err))
		assert.Equal(t, 2, f.stats(t, "a", f.today()).MessageHighlightsUsed)
	})

	t.Run("free plan", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, db.User{ID: "a", AccountStatus: string(entitlement.PlanFree), MessageHighlightsCount: 5})

		_, err := f.engine.UseHighlight(ctx, "a")
		assert.ErrorIs(t, err, svcErr.ErrPremiumRequired)
		assert.Equal(t, 5, f.loadUser(t, "a").MessageHighlightsCount)
	})
}
