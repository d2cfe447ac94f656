package matching_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/app"
	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/entitlement"
	"github.com/oggyb/matchmaking-core/internal/matching"
	"github.com/oggyb/matchmaking-core/internal/notify"
	"github.com/oggyb/matchmaking-core/internal/testutil"
	"github.com/oggyb/matchmaking-core/internal/usage"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.MatchEvent
}

func (p *recordingPublisher) PublishMatch(_ context.Context, ev notify.MatchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []notify.MatchEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.MatchEvent(nil), p.events...)
}

type fixture struct {
	engine *matching.Engine
	appCtx *app.AppContext
	db     *gorm.DB
	redis  *miniredis.Miniredis
	clock  *clock
	events *recordingPublisher
}

// limits keep quotas small so tests can exhaust them quickly.
var testLimits = entitlement.Limits{FreeDailySwipes: 3, SparshDailySwipes: 5}

func newFixture(t *testing.T, mutate ...func(*matching.Options)) *fixture {
	t.Helper()
	appCtx, mr := testutil.NewAppContext(t)
	f := &fixture{
		appCtx: appCtx,
		db:     appCtx.DB,
		redis:  mr,
		clock:  &clock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
		events: &recordingPublisher{},
	}
	opts := matching.Options{
		Limits:    testLimits,
		Publisher: f.events,
		Now:       f.clock.Now,
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.engine = matching.NewEngine(appCtx, opts)
	return f
}

func (f *fixture) user(t *testing.T, u db.User) db.User {
	t.Helper()
	return testutil.CreateUser(t, f.db, u)
}

func (f *fixture) users(t *testing.T, plan string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		f.user(t, db.User{ID: id, AccountStatus: plan, IsVerified: true})
	}
}

func (f *fixture) today() string {
	return usage.DayKey(f.clock.Now())
}

func (f *fixture) stats(t *testing.T, userID, date string) db.DailyStats {
	t.Helper()
	s, err := usage.NewCounter(f.db).Get(context.Background(), userID, date)
	require.NoError(t, err)
	return s
}

func (f *fixture) loadUser(t *testing.T, id string) db.User {
	t.Helper()
	var u db.User
	require.NoError(t, f.db.Where("id = ?", id).Take(&u).Error)
	return u
}

func (f *fixture) countMatches(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&db.Match{}).Count(&n).Error)
	return n
}

func (f *fixture) countSwipes(t *testing.T, from, to string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&db.SwipeAction{}).Where("swiper_id = ? AND swiped_id = ?", from, to).Count(&n).Error)
	return n
}

func (f *fixture) mustSwipe(t *testing.T, from, to, action string) *matching.SwipeResult {
	t.Helper()
	res, err := f.engine.Swipe(context.Background(), from, to, action)
	require.NoError(t, err)
	return res
}
