package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/matchmaking-core/internal/db"
)

// Counter names a column of user_daily_stats.
type Counter string

const (
	CounterSwipes     Counter = "swipes_used"
	CounterSuperlikes Counter = "superlikes_used"
	CounterHighlights Counter = "message_highlights_used"
)

func (c Counter) valid() bool {
	switch c {
	case CounterSwipes, CounterSuperlikes, CounterHighlights:
		return true
	}
	return false
}

// DailyStatsRepository maintains per-user, per-day usage rows.
//
// Rows are created lazily with all counters at 0. Every mutation is a
// single conditional UPDATE so concurrent requests never lose an increment.
type DailyStatsRepository struct {
	db *gorm.DB
}

func NewDailyStatsRepository(database *gorm.DB) *DailyStatsRepository {
	return &DailyStatsRepository{db: database}
}

// WithTx returns a repository that runs on tx.
func (r *DailyStatsRepository) WithTx(tx *gorm.DB) *DailyStatsRepository {
	return &DailyStatsRepository{db: tx}
}

// Get returns the row for (userID, date). A missing row reads as all zeros.
func (r *DailyStatsRepository) Get(ctx context.Context, userID, date string) (db.DailyStats, error) {
	var stats db.DailyStats
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Take(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.DailyStats{UserID: userID, Date: date}, nil
	}
	return stats, err
}

// Increment adds one to counter, creating the row first if needed.
func (r *DailyStatsRepository) Increment(ctx context.Context, userID, date string, counter Counter) error {
	_, err := r.ConsumeWithLimit(ctx, userID, date, counter, -1)
	return err
}

// ConsumeWithLimit adds one to counter only while it is below limit and
// reports whether it did. limit < 0 means unlimited.
//
// The check and the increment are one UPDATE statement, so N concurrent
// callers against a limit of N-1 see exactly one refusal.
func (r *DailyStatsRepository) ConsumeWithLimit(ctx context.Context, userID, date string, counter Counter, limit int) (bool, error) {
	if !counter.valid() {
		return false, fmt.Errorf("unknown daily counter %q", counter)
	}
	if err := r.ensure(ctx, userID, date); err != nil {
		return false, err
	}

	col := string(counter)
	query := r.db.WithContext(ctx).
		Model(&db.DailyStats{}).
		Where("user_id = ? AND date = ?", userID, date)
	if limit >= 0 {
		query = query.Where(col+" < ?", limit)
	}
	res := query.Update(col, gorm.Expr(col+" + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Decrement subtracts one from counter, clamped at zero, and reports
// whether anything changed. A missing row is left missing.
func (r *DailyStatsRepository) Decrement(ctx context.Context, userID, date string, counter Counter) (bool, error) {
	if !counter.valid() {
		return false, fmt.Errorf("unknown daily counter %q", counter)
	}
	col := string(counter)
	res := r.db.WithContext(ctx).
		Model(&db.DailyStats{}).
		Where("user_id = ? AND date = ?", userID, date).
		Where(col + " > 0").
		Update(col, gorm.Expr(col+" - ?", 1))
	return res.RowsAffected == 1, res.Error
}

func (r *DailyStatsRepository) ensure(ctx context.Context, userID, date string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(&db.DailyStats{UserID: userID, Date: date}).Error
}
