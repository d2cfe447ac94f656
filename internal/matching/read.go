package matching

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/entitlement"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/utils/pagination"
)

// Stats is a read-only snapshot of a user's plan and today's usage.
type Stats struct {
	Plan                string
	Date                string
	DailyLimit          int
	SwipesUsed          int
	SwipesRemaining     int
	SuperLikesAvailable int
	SuperlikesUsed      int
	HighlightsAvailable int
	HighlightsUsed      int
	IsVerified          bool
	CanUndo             bool
	CanInstantMatch     bool
	CanHighlight        bool
	LikedYouCount       int64
}

// Stats loads the entitlement snapshot and the liked-you count concurrently.
func (e *Engine) Stats(ctx context.Context, userID string) (*Stats, error) {
	if userID == "" {
		return nil, svcErr.ErrUnauthorized
	}

	var (
		snap     entitlement.Snapshot
		likedYou int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = e.checker.Evaluate(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		likedYou, err = e.CountLikedYou(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ent := snap.Entitlement
	return &Stats{
		Plan:                string(ent.Plan),
		Date:                snap.Date,
		DailyLimit:          ent.DailySwipeLimit,
		SwipesUsed:          snap.Usage.SwipesUsed,
		SwipesRemaining:     snap.SwipesRemaining(),
		SuperLikesAvailable: snap.User.SuperLikesCount,
		SuperlikesUsed:      snap.Usage.SuperlikesUsed,
		HighlightsAvailable: snap.User.MessageHighlightsCount,
		HighlightsUsed:      snap.Usage.MessageHighlightsUsed,
		IsVerified:          snap.User.IsVerified,
		CanUndo:             ent.CanUndo,
		CanInstantMatch:     ent.CanInstantMatch,
		CanHighlight:        ent.CanHighlight,
		LikedYouCount:       likedYou,
	}, nil
}

// ListLikedYou returns users who liked userID, excluding ones userID passed.
func (e *Engine) ListLikedYou(ctx context.Context, userID string, token *string, limit int) ([]db.SwipeAction, *string, error) {
	if userID == "" {
		return nil, nil, svcErr.ErrUnauthorized
	}
	likers, next, err := e.swipes.GetLikers(ctx, userID, token, limit)
	return likers, next, pageErr(err)
}

// ListPendingLikers returns likers userID has not swiped on yet.
func (e *Engine) ListPendingLikers(ctx context.Context, userID string, token *string, limit int) ([]db.SwipeAction, *string, error) {
	if userID == "" {
		return nil, nil, svcErr.ErrUnauthorized
	}
	likers, next, err := e.swipes.GetPendingLikers(ctx, userID, token, limit)
	return likers, next, pageErr(err)
}

// ListMatches returns userID's matches, newest first.
func (e *Engine) ListMatches(ctx context.Context, userID string, token *string, limit int) ([]db.Match, *string, error) {
	if userID == "" {
		return nil, nil, svcErr.ErrUnauthorized
	}
	matches, next, err := e.matches.ListForUser(ctx, userID, token, limit)
	return matches, next, pageErr(err)
}

// CountLikedYou returns how many users liked userID.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On a miss or Redis error, falls back to the DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
//
// Swipes and undos invalidate the key, so a hit is never stale by more
// than one failed invalidation.
func (e *Engine) CountLikedYou(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, svcErr.ErrUnauthorized
	}
	log := logger.FromContext(ctx, e.log)

	if e.cache != nil {
		n, ok, err := e.cache.GetLikeCount(ctx, userID)
		if err != nil {
			log.Warn("like count cache read failed", "user", userID, "err", err)
		} else if ok {
			return n, nil
		}
	}

	count, err := e.swipes.CountLikers(ctx, userID)
	if err != nil {
		return 0, svcErr.Persistence(err)
	}

	if e.cache != nil {
		if err := e.cache.SetLikeCount(ctx, userID, count); err != nil {
			log.Warn("like count cache write failed", "user", userID, "err", err)
		}
	}
	return count, nil
}

func pageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pagination.ErrInvalidToken) {
		return svcErr.Invalid("invalid pagination token")
	}
	return svcErr.Persistence(err)
}
