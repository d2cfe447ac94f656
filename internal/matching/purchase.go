package matching

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/entitlement"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/repository"
	"github.com/oggyb/matchmaking-core/internal/usage"
)

// Purchasable item types.
const (
	ItemSuperlikes = "superlikes"
	ItemHighlights = "highlights"
	ItemPlan       = "plan"
)

// Purchase is a "purchase fulfilled" event from the payment collaborator.
type Purchase struct {
	PurchaseID string
	UserID     string
	ItemType   string
	Count      int
	Plan       string
}

// PurchaseResult reports whether the event changed anything.
type PurchaseResult struct {
	Applied   bool
	Duplicate bool
}

// FulfillPurchase applies a purchase at most once per PurchaseID. The
// idempotency record and the balance or plan change commit together.
func (e *Engine) FulfillPurchase(ctx context.Context, p Purchase) (*PurchaseResult, error) {
	plan, err := validatePurchase(p)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, e.log).With("purchase", p.PurchaseID, "user", p.UserID, "item", p.ItemType)

	res := &PurchaseResult{}
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := e.purchases.WithTx(tx).Record(ctx, &db.Purchase{
			ID:       p.PurchaseID,
			UserID:   p.UserID,
			ItemType: p.ItemType,
			Count:    p.Count,
			Plan:     string(plan),
		})
		if err != nil {
			return svcErr.Persistence(err)
		}
		if !created {
			res.Duplicate = true
			return nil
		}

		users := e.users.WithTx(tx)
		switch p.ItemType {
		case ItemSuperlikes:
			err = users.AddSuperLikes(ctx, p.UserID, p.Count)
		case ItemHighlights:
			err = users.AddHighlights(ctx, p.UserID, p.Count)
		case ItemPlan:
			err = users.SetPlan(ctx, p.UserID, string(plan))
		}
		if repository.IsNotFound(err) {
			return svcErr.ErrProfileNotFound
		}
		if err != nil {
			return svcErr.Persistence(err)
		}
		res.Applied = true
		return nil
	})
	if err != nil {
		if svcErr.From(err).Kind == svcErr.KindPersistence {
			log.Error("purchase fulfillment failed", "err", err)
		}
		return nil, err
	}

	if res.Duplicate {
		log.Info("purchase already fulfilled")
	} else {
		e.metrics.PurchaseFulfilled(p.ItemType)
		log.Info("purchase fulfilled", "count", p.Count, "plan", plan)
	}
	return res, nil
}

func validatePurchase(p Purchase) (entitlement.Plan, error) {
	if p.PurchaseID == "" {
		return "", svcErr.Invalid("purchase id is required")
	}
	if p.UserID == "" {
		return "", svcErr.Invalid("user id is required")
	}
	switch p.ItemType {
	case ItemSuperlikes, ItemHighlights:
		if p.Count <= 0 {
			return "", svcErr.Invalid("count must be positive")
		}
		return "", nil
	case ItemPlan:
		plan, ok := entitlement.ParsePlan(p.Plan)
		if !ok {
			return "", svcErr.Invalid(fmt.Sprintf("unknown plan %q", p.Plan))
		}
		return plan, nil
	default:
		return "", svcErr.Invalid(fmt.Sprintf("unknown item type %q", p.ItemType))
	}
}

// HighlightResult is the balance left after using a highlight.
type HighlightResult struct {
	HighlightsRemaining int
	UsedToday           int
}

// UseHighlight spends one message highlight. Requires the highlights
// feature and a positive balance; the debit and today's usage commit together.
func (e *Engine) UseHighlight(ctx context.Context, userID string) (*HighlightResult, error) {
	if userID == "" {
		return nil, svcErr.ErrUnauthorized
	}
	u, ent, err := e.checker.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ent.CanHighlight {
		return nil, svcErr.ErrPremiumRequired.WithMessage("message highlights require sparsh or above")
	}
	if u.MessageHighlightsCount <= 0 {
		return nil, svcErr.ErrNoHighlightsAvailable
	}

	date := usage.DayKey(e.now())
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := e.users.WithTx(tx).ConsumeHighlight(ctx, userID)
		if err != nil {
			return svcErr.Persistence(err)
		}
		if !ok {
			return svcErr.ErrNoHighlightsAvailable
		}
		if err := e.usage.WithTx(tx).IncrementHighlightUsage(ctx, userID, date); err != nil {
			return svcErr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.HighlightUsed()

	after, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, svcErr.Persistence(err)
	}
	stats, err := e.usage.Get(ctx, userID, date)
	if err != nil {
		return nil, svcErr.Persistence(err)
	}
	return &HighlightResult{HighlightsRemaining: after.MessageHighlightsCount, UsedToday: stats.MessageHighlightsUsed}, nil
}
