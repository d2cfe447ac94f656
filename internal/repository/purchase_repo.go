package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/matchmaking-core/internal/db"
)

// PurchaseRepository remembers which gateway purchases were fulfilled.
type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(database *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: database}
}

// WithTx returns a repository that runs on tx.
func (r *PurchaseRepository) WithTx(tx *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: tx}
}

// Record stores p and reports false when p.ID was already fulfilled.
// The conflict is absorbed in SQL so an enclosing transaction stays usable.
func (r *PurchaseRepository) Record(ctx context.Context, p *db.Purchase) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
