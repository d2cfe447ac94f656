package matching

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/db"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/notify"
	"github.com/oggyb/matchmaking-core/internal/repository"
	"github.com/oggyb/matchmaking-core/internal/usage"
)

// InstantMatchResult is the match created by an explicit confirm.
type InstantMatchResult struct {
	Match *db.Match
	// LikeRecorded is set when the caller had not swiped on the target yet
	// and a like was recorded for them.
	LikeRecorded bool
}

// InstantMatch lets a verified sangam+ user confirm a like the target has
// already sent, without waiting in the swipe queue.
//
// The caller's like (if missing) and the match are written in one
// transaction. A caller who passed on the target gets ErrAlreadySwiped; an
// existing match gets ErrMatchAlreadyExists.
func (e *Engine) InstantMatch(ctx context.Context, userID, targetID string) (*InstantMatchResult, error) {
	start := time.Now()
	defer e.metrics.ObserveDuration("instant_match", start)

	if err := validatePair(userID, targetID); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, e.log).With("user", userID, "target", targetID)

	u, ent, err := e.checker.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsVerified {
		return nil, svcErr.ErrVerificationRequired
	}
	if !ent.CanInstantMatch {
		return nil, svcErr.ErrPremiumRequired.WithMessage("instant match requires sangam or above")
	}
	if err := e.requireProfile(ctx, targetID); err != nil {
		return nil, err
	}

	liked, err := e.swipes.HasLiked(ctx, targetID, userID)
	if err != nil {
		return nil, svcErr.Persistence(err)
	}
	if !liked {
		return nil, svcErr.ErrNoReciprocalLike
	}

	res := &InstantMatchResult{}
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matches := e.matches.WithTx(tx)
		swipes := e.swipes.WithTx(tx)

		exists, err := matches.Exists(ctx, userID, targetID)
		if err != nil {
			return svcErr.Persistence(err)
		}
		if exists {
			return svcErr.ErrMatchAlreadyExists
		}

		own, err := swipes.Latest(ctx, userID, targetID)
		switch {
		case err == nil:
			if !own.IsPositive() {
				return svcErr.ErrAlreadySwiped.WithMessage("you passed on this user")
			}
		case repository.IsNotFound(err):
			like := &db.SwipeAction{
				SwiperID:  userID,
				SwipedID:  targetID,
				Action:    db.ActionLike,
				CreatedAt: e.now().UTC().Truncate(time.Millisecond),
			}
			if err := swipes.Create(ctx, like); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return svcErr.ErrAlreadySwiped
				}
				return svcErr.Persistence(err)
			}
			if err := e.usage.WithTx(tx).IncrementSwipeUsage(ctx, userID, usage.DayKey(like.CreatedAt)); err != nil {
				return svcErr.Persistence(err)
			}
			res.LikeRecorded = true
		default:
			return svcErr.Persistence(err)
		}

		m, err := matches.Create(ctx, userID, targetID, e.now().UTC().Truncate(time.Millisecond))
		if errors.Is(err, repository.ErrDuplicate) {
			return svcErr.ErrMatchAlreadyExists
		}
		if err != nil {
			return svcErr.Persistence(err)
		}
		res.Match = m
		return nil
	})
	if err != nil {
		if svcErr.From(err).Kind == svcErr.KindPersistence {
			log.Error("instant match failed", "err", err)
		}
		return nil, err
	}

	e.invalidateLikeCounts(ctx, log, userID, targetID)
	e.matchCreated(ctx, res.Match, notify.SourceInstant)
	log.Debug("instant match created", "match", res.Match.ID)
	return res, nil
}
