// Package matching records swipes, forms matches from reciprocal likes and
// reverses swipes on undo. It owns the transaction boundaries; the
// repositories it drives enforce uniqueness and counter bounds in SQL.
package matching

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/app"
	"github.com/oggyb/matchmaking-core/internal/cache"
	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/entitlement"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/metrics"
	"github.com/oggyb/matchmaking-core/internal/notify"
	"github.com/oggyb/matchmaking-core/internal/ratelimit"
	"github.com/oggyb/matchmaking-core/internal/repository"
	"github.com/oggyb/matchmaking-core/internal/usage"
)

// Options tune an Engine.
type Options struct {
	Limits entitlement.Limits
	// BurstPerMinute caps swipes per user per minute; 0 disables it.
	BurstPerMinute int
	// Publisher receives created matches. Defaults to a Redis publisher on
	// MatchChannel when the AppContext has Redis, otherwise drops events.
	Publisher    notify.Publisher
	MatchChannel string
	Now          func() time.Time
}

// Engine runs the swipe, match and undo operations.
type Engine struct {
	db        *gorm.DB
	log       *slog.Logger
	metrics   *metrics.Metrics
	cache     *cache.RedisCache
	swipes    *repository.SwipeRepository
	matches   *repository.MatchRepository
	users     *repository.UserRepository
	purchases *repository.PurchaseRepository
	usage     *usage.Counter
	checker   *entitlement.Checker
	limiter   *ratelimit.Limiter
	publisher notify.Publisher
	now       func() time.Time
}

// NewEngine wires an Engine from the shared AppContext.
func NewEngine(appCtx *app.AppContext, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := appCtx.Logger
	if log == nil {
		log = logger.L()
	}

	users := repository.NewUserRepository(appCtx.DB)
	counter := usage.NewCounter(appCtx.DB)

	e := &Engine{
		db:        appCtx.DB,
		log:       log.With("component", "matching"),
		metrics:   appCtx.Metrics,
		cache:     appCtx.RedisCache,
		swipes:    repository.NewSwipeRepository(appCtx.DB),
		matches:   repository.NewMatchRepository(appCtx.DB),
		users:     users,
		purchases: repository.NewPurchaseRepository(appCtx.DB),
		usage:     counter,
		checker:   entitlement.NewChecker(users, counter, opts.Limits, now),
		publisher: opts.Publisher,
		now:       now,
	}
	if appCtx.RedisCache != nil {
		e.limiter = ratelimit.NewPerMinute(appCtx.RedisCache, "rl:swipe", opts.BurstPerMinute)
		if e.publisher == nil && opts.MatchChannel != "" {
			e.publisher = notify.NewRedisPublisher(appCtx.RedisCache, opts.MatchChannel)
		}
	}
	if e.publisher == nil {
		e.publisher = notify.Nop{}
	}
	return e
}

// Checker exposes the entitlement checker the engine consults.
func (e *Engine) Checker() *entitlement.Checker {
	return e.checker
}

// SwipeResult is the outcome of a recorded swipe.
type SwipeResult struct {
	Swipe   *db.SwipeAction
	IsMatch bool
	Match   *db.Match
	// Partial is set when the swipe committed but match formation failed.
	Partial bool
	// SwipesRemaining after this swipe, or entitlement.Unlimited.
	SwipesRemaining int
}

// Swipe records swiperID's action on swipedID.
//
// Behavior:
//   - Validation, burst and entitlement failures return before any write.
//     An existing swipe on the pair is reported as ErrAlreadySwiped ahead of
//     the quota and superlike checks.
//   - Daily quota, superlike debit and the ledger insert commit together or
//     not at all. The quota is consumed with a conditional UPDATE and the
//     insert is guarded by the unique pair index.
//   - For likes and superlikes, match formation runs after commit; its
//     failure is logged and reported as Partial without unwinding the swipe.
func (e *Engine) Swipe(ctx context.Context, swiperID, swipedID, action string) (*SwipeResult, error) {
	start := time.Now()
	defer e.metrics.ObserveDuration("swipe", start)

	label := action
	if !validAction(action) {
		label = "invalid"
	}
	res, err := e.swipe(ctx, swiperID, swipedID, action)
	if err != nil {
		e.metrics.Swipe(label, svcErr.From(err).Reason)
		return nil, err
	}
	e.metrics.Swipe(label, "ok")
	return res, nil
}

func (e *Engine) swipe(ctx context.Context, swiperID, swipedID, action string) (*SwipeResult, error) {
	if err := validatePair(swiperID, swipedID); err != nil {
		return nil, err
	}
	if !validAction(action) {
		return nil, svcErr.ErrInvalidAction
	}
	log := logger.FromContext(ctx, e.log).With("swiper", swiperID, "swiped", swipedID, "action", action)

	if err := e.allowBurst(ctx, log, swiperID); err != nil {
		return nil, err
	}

	snap, err := e.checker.Evaluate(ctx, swiperID)
	if err != nil {
		return nil, err
	}
	// A repeat swipe is a conflict, never a quota or balance problem.
	exists, err := e.swipes.Exists(ctx, swiperID, swipedID)
	if err != nil {
		log.Error("swipe lookup failed", "err", err)
		return nil, svcErr.Persistence(err)
	}
	if exists {
		return nil, svcErr.ErrAlreadySwiped
	}
	if !snap.CanSwipe() {
		return nil, svcErr.ErrDailyLimitReached
	}
	if action == db.ActionSuperlike && snap.User.SuperLikesCount <= 0 {
		return nil, svcErr.ErrNoSuperlikesAvailable
	}
	if err := e.requireProfile(ctx, swipedID); err != nil {
		return nil, err
	}

	swipe := &db.SwipeAction{
		SwiperID:  swiperID,
		SwipedID:  swipedID,
		Action:    action,
		CreatedAt: e.now().UTC().Truncate(time.Millisecond),
	}
	date := usage.DayKey(swipe.CreatedAt)
	limit := snap.Entitlement.DailySwipeLimit

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := e.swipes.WithTx(tx).Exists(ctx, swiperID, swipedID)
		if err != nil {
			return svcErr.Persistence(err)
		}
		if exists {
			return svcErr.ErrAlreadySwiped
		}

		counter := e.usage.WithTx(tx)
		consumed, err := counter.ConsumeSwipe(ctx, swiperID, date, limit)
		if err != nil {
			return svcErr.Persistence(err)
		}
		if !consumed {
			return svcErr.ErrDailyLimitReached
		}

		if action == db.ActionSuperlike {
			ok, err := e.users.WithTx(tx).ConsumeSuperLike(ctx, swiperID)
			if err != nil {
				return svcErr.Persistence(err)
			}
			if !ok {
				return svcErr.ErrNoSuperlikesAvailable
			}
			if err := counter.IncrementSuperlikeUsage(ctx, swiperID, date); err != nil {
				return svcErr.Persistence(err)
			}
		}

		if err := e.swipes.WithTx(tx).Create(ctx, swipe); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return svcErr.ErrAlreadySwiped
			}
			return svcErr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		if svcErr.From(err).Kind == svcErr.KindPersistence {
			log.Error("swipe failed", "err", err)
		}
		return nil, err
	}

	res := &SwipeResult{Swipe: swipe, SwipesRemaining: entitlement.Unlimited}
	if limit != entitlement.Unlimited {
		res.SwipesRemaining = max(snap.SwipesRemaining()-1, 0)
	}
	e.invalidateLikeCounts(ctx, log, swiperID, swipedID)

	if swipe.IsPositive() {
		isMatch, m, err := e.FormMatch(ctx, swiperID, swipedID)
		if err != nil {
			log.Error("match formation failed after swipe", "err", err)
			res.Partial = true
		} else {
			res.IsMatch, res.Match = isMatch, m
		}
	}

	log.Debug("swipe recorded", "is_match", res.IsMatch, "partial", res.Partial)
	return res, nil
}

func (e *Engine) allowBurst(ctx context.Context, log *slog.Logger, userID string) error {
	r, err := e.limiter.Allow(ctx, userID)
	if err != nil {
		// the daily quota still holds without Redis
		log.Warn("burst limiter unavailable", "err", err)
		return nil
	}
	if !r.Allowed {
		return svcErr.ErrTooFast
	}
	return nil
}

// requireProfile fails with ErrProfileNotFound for unknown users.
func (e *Engine) requireProfile(ctx context.Context, userID string) error {
	_, err := e.users.Get(ctx, userID)
	if repository.IsNotFound(err) {
		return svcErr.ErrProfileNotFound.WithMessage("target profile not found")
	}
	return svcErr.Persistence(err)
}

// invalidateLikeCounts drops cached liked-you counts touched by a swipe.
func (e *Engine) invalidateLikeCounts(ctx context.Context, log *slog.Logger, userIDs ...string) {
	if e.cache == nil {
		return
	}
	for _, id := range userIDs {
		if err := e.cache.InvalidateLikeCount(ctx, id); err != nil {
			log.Warn("failed to invalidate like count", "user", id, "err", err)
		}
	}
}

func validatePair(actorID, targetID string) error {
	if actorID == "" {
		return svcErr.ErrUnauthorized
	}
	if targetID == "" {
		return svcErr.Invalid("target user id is required")
	}
	if actorID == targetID {
		return svcErr.ErrSelfSwipe
	}
	return nil
}

func validAction(action string) bool {
	switch action {
	case db.ActionLike, db.ActionPass, db.ActionSuperlike:
		return true
	}
	return false
}
