package matching

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/entitlement"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/repository"
	"github.com/oggyb/matchmaking-core/internal/usage"
)

// Undo bookkeeping step names reported in UndoResult.FailedSteps.
const (
	StepDecrementSwipes     = "decrement_swipes_used"
	StepDecrementSuperlikes = "decrement_superlikes_used"
	StepRefundSuperlike     = "refund_superlike"
	StepInvalidateCache     = "invalidate_like_counts"
)

// UndoResult describes a reversed swipe.
type UndoResult struct {
	UndoneAction string
	MatchRemoved bool
	// Partial is set when the swipe (and match) were removed but some
	// counter bookkeeping failed; FailedSteps names those steps.
	Partial     bool
	FailedSteps []string
}

type undoStep struct {
	name string
	run  func(ctx context.Context) error
}

// Undo reverses userID's most recent swipe on swipedUserID.
//
// Behavior:
//   - Requires the undo feature (sparsh and above).
//   - The swipe delete and, for a positive swipe with a standing reciprocal
//     like, the match delete commit in one transaction. The counterpart's
//     like is kept, so swiping again re-creates the same canonical match.
//   - Counter bookkeeping then runs step by step. A failed step is logged
//     and reported; it never restores the swipe.
//   - Usage is decremented on the day the swipe was counted, and a
//     superlike is refunded to the balance.
func (e *Engine) Undo(ctx context.Context, userID, swipedUserID string) (*UndoResult, error) {
	start := time.Now()
	defer e.metrics.ObserveDuration("undo", start)

	res, err := e.undo(ctx, userID, swipedUserID)
	switch {
	case err != nil:
		e.metrics.Undo(svcErr.From(err).Reason)
	case res.Partial:
		e.metrics.Undo("partial")
	default:
		e.metrics.Undo("ok")
	}
	return res, err
}

func (e *Engine) undo(ctx context.Context, userID, swipedUserID string) (*UndoResult, error) {
	if err := validatePair(userID, swipedUserID); err != nil {
		return nil, err
	}
	if _, err := e.checker.Require(ctx, userID, entitlement.FeatureUndo); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, e.log).With("user", userID, "swiped", swipedUserID)

	var (
		swipe        *db.SwipeAction
		matchRemoved bool
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swipes := e.swipes.WithTx(tx)

		s, err := swipes.Latest(ctx, userID, swipedUserID)
		if repository.IsNotFound(err) {
			return svcErr.ErrSwipeNotFound
		}
		if err != nil {
			return svcErr.Persistence(err)
		}

		removed, err := swipes.Delete(ctx, s.ID)
		if err != nil {
			return svcErr.Persistence(err)
		}
		if !removed {
			// a concurrent undo got there first
			return svcErr.ErrSwipeNotFound
		}

		if s.IsPositive() {
			reciprocal, err := swipes.HasLiked(ctx, swipedUserID, userID)
			if err != nil {
				return svcErr.Persistence(err)
			}
			if reciprocal {
				matchRemoved, err = e.matches.WithTx(tx).DeleteByPair(ctx, userID, swipedUserID)
				if err != nil {
					return svcErr.Persistence(err)
				}
			}
		}
		swipe = s
		return nil
	})
	if err != nil {
		if svcErr.From(err).Kind == svcErr.KindPersistence {
			log.Error("undo failed", "err", err)
		}
		return nil, err
	}

	res := &UndoResult{UndoneAction: swipe.Action, MatchRemoved: matchRemoved}
	res.FailedSteps = e.runSteps(ctx, log, e.undoBookkeeping(swipe))
	res.Partial = len(res.FailedSteps) > 0

	log.Debug("swipe undone", "action", swipe.Action, "match_removed", matchRemoved, "partial", res.Partial)
	return res, nil
}

func (e *Engine) undoBookkeeping(swipe *db.SwipeAction) []undoStep {
	userID := swipe.SwiperID
	date := usage.DayKey(swipe.CreatedAt)

	steps := []undoStep{{
		name: StepDecrementSwipes,
		run: func(ctx context.Context) error {
			return e.usage.DecrementSwipeUsage(ctx, userID, date)
		},
	}}
	if swipe.Action == db.ActionSuperlike {
		steps = append(steps,
			undoStep{
				name: StepDecrementSuperlikes,
				run: func(ctx context.Context) error {
					return e.usage.DecrementSuperlikeUsage(ctx, userID, date)
				},
			},
			undoStep{
				name: StepRefundSuperlike,
				run: func(ctx context.Context) error {
					return e.users.AddSuperLikes(ctx, userID, 1)
				},
			},
		)
	}
	if e.cache != nil {
		steps = append(steps, undoStep{
			name: StepInvalidateCache,
			run: func(ctx context.Context) error {
				if err := e.cache.InvalidateLikeCount(ctx, swipe.SwipedID); err != nil {
					return err
				}
				return e.cache.InvalidateLikeCount(ctx, userID)
			},
		})
	}
	return steps
}

// runSteps runs every step regardless of earlier failures and returns the
// names of the ones that failed.
func (e *Engine) runSteps(ctx context.Context, log *slog.Logger, steps []undoStep) []string {
	var failed []string
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			log.Error("undo step failed", "step", s.name, "err", err)
			failed = append(failed, s.name)
		}
	}
	return failed
}
