package entitlement

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/usage"
)

// UserReader loads the identity record.
type UserReader interface {
	Get(ctx context.Context, id string) (*db.User, error)
}

// UsageReader loads a day's usage counters.
type UsageReader interface {
	Get(ctx context.Context, userID, date string) (db.DailyStats, error)
}

// Checker resolves entitlements from the current user record on every
// call. Nothing is cached because a purchase can change the plan mid-day.
type Checker struct {
	users  UserReader
	usage  UsageReader
	limits Limits
	now    func() time.Time
}

// NewChecker builds a Checker. now defaults to time.Now.
func NewChecker(users UserReader, stats UsageReader, limits Limits, now func() time.Time) *Checker {
	if now == nil {
		now = time.Now
	}
	return &Checker{users: users, usage: stats, limits: limits, now: now}
}

// Snapshot is the entitlement and today's usage of one user.
type Snapshot struct {
	User        *db.User
	Entitlement Entitlement
	Date        string
	Usage       db.DailyStats
}

// SwipesRemaining is Unlimited for unmetered tiers, otherwise never negative.
func (s Snapshot) SwipesRemaining() int {
	if s.Entitlement.DailySwipeLimit == Unlimited {
		return Unlimited
	}
	left := s.Entitlement.DailySwipeLimit - s.Usage.SwipesUsed
	if left < 0 {
		return 0
	}
	return left
}

// CanSwipe reports whether one more swipe fits today's quota.
func (s Snapshot) CanSwipe() bool {
	return s.SwipesRemaining() != 0
}

// Resolve loads the user and derives their entitlement.
// A missing profile yields svcErr.ErrProfileNotFound.
func (c *Checker) Resolve(ctx context.Context, userID string) (*db.User, Entitlement, error) {
	u, err := c.users.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Entitlement{}, svcErr.ErrProfileNotFound
	}
	if err != nil {
		return nil, Entitlement{}, svcErr.Persistence(err)
	}
	plan, _ := ParsePlan(u.AccountStatus)
	return u, For(plan, c.limits), nil
}

// Evaluate resolves the entitlement together with today's usage.
func (c *Checker) Evaluate(ctx context.Context, userID string) (Snapshot, error) {
	u, ent, err := c.Resolve(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	date := usage.DayKey(c.now())
	stats, err := c.usage.Get(ctx, userID, date)
	if err != nil {
		return Snapshot{}, svcErr.Persistence(err)
	}
	return Snapshot{User: u, Entitlement: ent, Date: date, Usage: stats}, nil
}

// CheckCanSwipe reports whether userID can still swipe today. Any failure
// to resolve the user reports false alongside the error.
func (c *Checker) CheckCanSwipe(ctx context.Context, userID string) (bool, error) {
	snap, err := c.Evaluate(ctx, userID)
	if err != nil {
		return false, err
	}
	return snap.CanSwipe(), nil
}

// GetDailyLimit returns the user's current daily quota, or Unlimited.
func (c *Checker) GetDailyLimit(ctx context.Context, userID string) (int, error) {
	_, ent, err := c.Resolve(ctx, userID)
	if err != nil {
		return 0, err
	}
	return ent.DailySwipeLimit, nil
}

// Require returns nil when userID's plan includes f, otherwise the
// entitlement error clients use to show an upgrade prompt.
func (c *Checker) Require(ctx context.Context, userID string, f Feature) (*db.User, error) {
	u, ent, err := c.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !HasFeature(ent.Plan, f) {
		if f == FeatureUndo {
			return nil, svcErr.ErrUndoNotAllowed
		}
		return nil, svcErr.ErrPremiumRequired
	}
	return u, nil
}
