package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
)

// UserRepository reads plan/verification and adjusts the purchased
// balances on users. Balances only move through conditional UPDATEs.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// WithTx returns a repository that runs on tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Get loads a user or returns gorm.ErrRecordNotFound.
func (r *UserRepository) Get(ctx context.Context, id string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ConsumeSuperLike takes one superlike from the balance. It returns false
// when the balance is already 0 (or the user does not exist).
func (r *UserRepository) ConsumeSuperLike(ctx context.Context, id string) (bool, error) {
	return r.consume(ctx, id, "super_likes_count")
}

// ConsumeHighlight takes one message highlight from the balance.
func (r *UserRepository) ConsumeHighlight(ctx context.Context, id string) (bool, error) {
	return r.consume(ctx, id, "message_highlights_count")
}

// AddSuperLikes tops up the superlike balance by n. Returns
// gorm.ErrRecordNotFound for an unknown user.
func (r *UserRepository) AddSuperLikes(ctx context.Context, id string, n int) error {
	return r.add(ctx, id, "super_likes_count", n)
}

// AddHighlights tops up the message highlight balance by n.
func (r *UserRepository) AddHighlights(ctx context.Context, id string, n int) error {
	return r.add(ctx, id, "message_highlights_count", n)
}

// SetPlan switches the user's plan tier.
func (r *UserRepository) SetPlan(ctx context.Context, id, plan string) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("account_status", plan)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) consume(ctx context.Context, id, col string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND "+col+" > 0", id).
		Update(col, gorm.Expr(col+" - ?", 1))
	return res.RowsAffected == 1, res.Error
}

func (r *UserRepository) add(ctx context.Context, id, col string, n int) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update(col, gorm.Expr(col+" + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
