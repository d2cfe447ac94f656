// Package notify hands created matches to the push-notification dispatcher.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Match sources.
const (
	SourceSwipe   = "swipe"
	SourceInstant = "instant"
)

// MatchEvent is the payload published for every new match.
type MatchEvent struct {
	MatchID   string    `json:"match_id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher delivers match events. Delivery is best-effort.
type Publisher interface {
	PublishMatch(ctx context.Context, ev MatchEvent) error
}

// ChannelPublisher is a Pub/Sub transport such as *cache.RedisCache.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisPublisher publishes JSON match events on one channel.
type RedisPublisher struct {
	pub     ChannelPublisher
	channel string
}

func NewRedisPublisher(pub ChannelPublisher, channel string) *RedisPublisher {
	return &RedisPublisher{pub: pub, channel: channel}
}

func (p *RedisPublisher) PublishMatch(ctx context.Context, ev MatchEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal match event: %w", err)
	}
	if err := p.pub.Publish(ctx, p.channel, payload); err != nil {
		return fmt.Errorf("publish match event: %w", err)
	}
	return nil
}

// Nop drops events.
type Nop struct{}

func (Nop) PublishMatch(context.Context, MatchEvent) error { return nil }
