package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/utils/pagination"
)

// CanonicalPair orders two user ids so the smaller one (by string
// comparison) comes first. Both swipe orders map to the same pair.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// MatchRepository stores canonical match rows.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a repository that runs on tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// Create inserts the canonical match for {a, b}. A zero createdAt is filled
// in by gorm. If the pair already has a match, ErrDuplicate is returned and
// no row is written.
func (r *MatchRepository) Create(ctx context.Context, a, b string, createdAt time.Time) (*db.Match, error) {
	u1, u2 := CanonicalPair(a, b)
	m := &db.Match{ID: uuid.NewString(), User1ID: u1, User2ID: u2, CreatedAt: createdAt}
	err := r.db.WithContext(ctx).Create(m).Error
	if isDuplicate(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindByPair returns the match for {a, b} in either order, or gorm.ErrRecordNotFound.
func (r *MatchRepository) FindByPair(ctx context.Context, a, b string) (*db.Match, error) {
	u1, u2 := CanonicalPair(a, b)
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists reports whether {a, b} are matched.
func (r *MatchRepository) Exists(ctx context.Context, a, b string) (bool, error) {
	u1, u2 := CanonicalPair(a, b)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Count(&count).Error
	return count > 0, err
}

// DeleteByPair removes the match for {a, b} and reports whether one existed.
func (r *MatchRepository) DeleteByPair(ctx context.Context, a, b string) (bool, error) {
	u1, u2 := CanonicalPair(a, b)
	res := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Delete(&db.Match{})
	return res.RowsAffected > 0, res.Error
}

// ListForUser returns the user's matches, newest first.
//
// Behavior:
//   - userID may sit on either side of the canonical pair.
//   - Ordered by created_at DESC, id DESC with cursor pagination.
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID string,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}
	limit = pagination.Limit(limit)

	query := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID)
	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var matches []db.Match
	if err := query.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, err := pagination.Encode(pagination.Cursor{ID: last.ID, CreatedUnix: last.CreatedAt.UnixMilli()})
		if err != nil {
			return nil, nil, err
		}
		nextToken = &token
		matches = matches[:limit]
	}
	return matches, nextToken, nil
}
