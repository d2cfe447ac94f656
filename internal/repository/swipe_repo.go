package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/utils/pagination"
)

// SwipeRepository provides data access for the swipe ledger.
// The unique index on (swiper_id, swiped_id) is the authority on
// "already swiped"; Exists is only a fast path in front of it.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// WithTx returns a repository that runs on tx.
func (r *SwipeRepository) WithTx(tx *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: tx}
}

// Exists reports whether swiper already has a swipe recorded on swiped.
func (r *SwipeRepository) Exists(ctx context.Context, swiperID, swipedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.SwipeAction{}).
		Where("swiper_id = ? AND swiped_id = ?", swiperID, swipedID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a swipe. ID is generated when empty. A second swipe for the
// same ordered pair returns ErrDuplicate.
func (r *SwipeRepository) Create(ctx context.Context, swipe *db.SwipeAction) error {
	if swipe.ID == "" {
		swipe.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Create(swipe).Error
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Latest returns the most recent swipe by swiper on swiped, or
// gorm.ErrRecordNotFound.
func (r *SwipeRepository) Latest(ctx context.Context, swiperID, swipedID string) (*db.SwipeAction, error) {
	var swipe db.SwipeAction
	err := r.db.WithContext(ctx).
		Where("swiper_id = ? AND swiped_id = ?", swiperID, swipedID).
		Order("created_at DESC, id DESC").
		Take(&swipe).Error
	if err != nil {
		return nil, err
	}
	return &swipe, nil
}

// HasLiked reports whether actor has a like or superlike recorded on target.
//
// Example:
//
//	repo.HasLiked(ctx, "b", "a") // did b like a back?
func (r *SwipeRepository) HasLiked(ctx context.Context, actorID, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.SwipeAction{}).
		Where("swiper_id = ? AND swiped_id = ? AND action IN ?", actorID, targetID, positiveActions).
		Count(&count).Error
	return count > 0, err
}

// Delete removes a swipe by id and reports whether a row was removed.
func (r *SwipeRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.SwipeAction{})
	return res.RowsAffected > 0, res.Error
}

var positiveActions = []string{db.ActionLike, db.ActionSuperlike}

// GetLikers returns swipes from users who liked or superliked recipientID.
//
// Behavior:
//   - Excludes users the recipient explicitly passed.
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	recipientID string,
	paginationToken *string,
	limit int,
) ([]db.SwipeAction, *string, error) {
	query := r.db.WithContext(ctx).
		Table("swipe_actions s").
		Where("s.swiped_id = ? AND s.action IN ?", recipientID, positiveActions).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipe_actions s2
				WHERE s2.swiper_id = ?
				  AND s2.swiped_id = s.swiper_id
				  AND s2.action = ?
			)`, recipientID, db.ActionPass)
	return r.page(query, paginationToken, limit)
}

// GetPendingLikers returns likers the recipient has not swiped on yet,
// i.e. the "liked you" queue that can still turn into a match.
func (r *SwipeRepository) GetPendingLikers(
	ctx context.Context,
	recipientID string,
	paginationToken *string,
	limit int,
) ([]db.SwipeAction, *string, error) {
	query := r.db.WithContext(ctx).
		Table("swipe_actions s").
		Where("s.swiped_id = ? AND s.action IN ?", recipientID, positiveActions).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipe_actions s2
				WHERE s2.swiper_id = ?
				  AND s2.swiped_id = s.swiper_id
			)`, recipientID)
	return r.page(query, paginationToken, limit)
}

// CountLikers returns how many users liked recipientID, excluding the ones
// the recipient passed. Used behind the Redis cache.
func (r *SwipeRepository) CountLikers(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipe_actions s").
		Where("s.swiped_id = ? AND s.action IN ?", recipientID, positiveActions).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipe_actions s2
				WHERE s2.swiper_id = ?
				  AND s2.swiped_id = s.swiper_id
				  AND s2.action = ?
			)`, recipientID, db.ActionPass).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SwipeRepository) page(query *gorm.DB, paginationToken *string, limit int) ([]db.SwipeAction, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}
	limit = pagination.Limit(limit)

	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(s.created_at < ? OR (s.created_at = ? AND s.id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var swipes []db.SwipeAction
	err = query.
		Select("s.*").
		Order("s.created_at DESC, s.id DESC").
		Limit(limit + 1).
		Find(&swipes).Error
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, err := pagination.Encode(pagination.Cursor{ID: last.ID, CreatedUnix: last.CreatedAt.UnixMilli()})
		if err != nil {
			return nil, nil, err
		}
		nextToken = &token
		swipes = swipes[:limit]
	}
	return swipes, nextToken, nil
}
