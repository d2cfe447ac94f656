// Package usage keeps the per-user, per-UTC-day usage counters.
package usage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/repository"
)

const dayLayout = "2006-01-02"

// DayKey is the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// Counter increments and decrements daily usage. Every write for one action
// uses the date string the caller computed once.
type Counter struct {
	repo *repository.DailyStatsRepository
}

func NewCounter(database *gorm.DB) *Counter {
	return &Counter{repo: repository.NewDailyStatsRepository(database)}
}

// WithTx returns a Counter that writes through tx.
func (c *Counter) WithTx(tx *gorm.DB) *Counter {
	return &Counter{repo: c.repo.WithTx(tx)}
}

// Get returns the counters for (userID, date); a day with no activity reads as zeros.
func (c *Counter) Get(ctx context.Context, userID, date string) (db.DailyStats, error) {
	return c.repo.Get(ctx, userID, date)
}

// ConsumeSwipe counts one swipe if the user is still under limit
// (limit < 0 is unlimited) and reports whether it was counted.
func (c *Counter) ConsumeSwipe(ctx context.Context, userID, date string, limit int) (bool, error) {
	return c.repo.ConsumeWithLimit(ctx, userID, date, repository.CounterSwipes, limit)
}

func (c *Counter) IncrementSwipeUsage(ctx context.Context, userID, date string) error {
	return c.repo.Increment(ctx, userID, date, repository.CounterSwipes)
}

func (c *Counter) IncrementSuperlikeUsage(ctx context.Context, userID, date string) error {
	return c.repo.Increment(ctx, userID, date, repository.CounterSuperlikes)
}

func (c *Counter) IncrementHighlightUsage(ctx context.Context, userID, date string) error {
	return c.repo.Increment(ctx, userID, date, repository.CounterHighlights)
}

// DecrementSwipeUsage undoes one swipe. Counters never go below zero.
func (c *Counter) DecrementSwipeUsage(ctx context.Context, userID, date string) error {
	_, err := c.repo.Decrement(ctx, userID, date, repository.CounterSwipes)
	return err
}

func (c *Counter) DecrementSuperlikeUsage(ctx context.Context, userID, date string) error {
	_, err := c.repo.Decrement(ctx, userID, date, repository.CounterSuperlikes)
	return err
}

func (c *Counter) DecrementHighlightUsage(ctx context.Context, userID, date string) error {
	_, err := c.repo.Decrement(ctx, userID, date, repository.CounterHighlights)
	return err
}
