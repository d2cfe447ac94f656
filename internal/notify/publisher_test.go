package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchmaking-core/internal/notify"
	"github.com/oggyb/matchmaking-core/internal/testutil"
)

func TestRedisPublisherSendsJSON(t *testing.T) {
	ctx := context.Background()
	_, rc := testutil.NewRedis(t)

	sub := rc.Client.Subscribe(ctx, "matches.created")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	p := notify.NewRedisPublisher(rc, "matches.created")
	require.NoError(t, p.PublishMatch(ctx, notify.MatchEvent{
		MatchID: "m1", User1ID: "a", User2ID: "b", Source: notify.SourceSwipe, CreatedAt: created,
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var ev notify.MatchEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, "m1", ev.MatchID)
	assert.Equal(t, "a", ev.User1ID)
	assert.Equal(t, notify.SourceSwipe, ev.Source)
	assert.True(t, created.Equal(ev.CreatedAt))
}

func TestRedisPublisherReportsClosedConnection(t *testing.T) {
	mr, rc := testutil.NewRedis(t)
	mr.Close()

	err := notify.NewRedisPublisher(rc, "matches.created").PublishMatch(context.Background(), notify.MatchEvent{MatchID: "m1"})
	assert.Error(t, err)
}
