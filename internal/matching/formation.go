package matching

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/notify"
	"github.com/oggyb/matchmaking-core/internal/repository"
)

// FormMatch creates the canonical match for {swiperID, swipedID} when
// swipedID has liked or superliked swiperID.
//
// Two reciprocal swipes racing here both reach the insert; the unique
// canonical pair index lets exactly one win and the other reads the
// winner's row, so both report isMatch with the same match.
func (e *Engine) FormMatch(ctx context.Context, swiperID, swipedID string) (bool, *db.Match, error) {
	reciprocal, err := e.swipes.HasLiked(ctx, swipedID, swiperID)
	if err != nil {
		return false, nil, err
	}
	if !reciprocal {
		return false, nil, nil
	}

	m, err := e.matches.Create(ctx, swiperID, swipedID, e.now().UTC().Truncate(time.Millisecond))
	if errors.Is(err, repository.ErrDuplicate) {
		existing, err := e.matches.FindByPair(ctx, swiperID, swipedID)
		if err != nil {
			return false, nil, err
		}
		return true, existing, nil
	}
	if err != nil {
		return false, nil, err
	}

	e.matchCreated(ctx, m, notify.SourceSwipe)
	return true, m, nil
}

// matchCreated runs the best-effort side effects of a new match.
func (e *Engine) matchCreated(ctx context.Context, m *db.Match, source string) {
	e.metrics.MatchCreated(source)
	ev := notify.MatchEvent{
		MatchID:   m.ID,
		User1ID:   m.User1ID,
		User2ID:   m.User2ID,
		Source:    source,
		CreatedAt: m.CreatedAt,
	}
	if err := e.publisher.PublishMatch(ctx, ev); err != nil {
		logger.FromContext(ctx, e.log).Warn("match event not delivered", "match", m.ID, "err", err)
	}
}
