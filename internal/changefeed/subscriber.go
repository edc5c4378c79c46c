package changefeed

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// SubscriberConfig holds configuration for a feed subscriber
type SubscriberConfig struct {
	// Redis client
	RedisClient *redis.Client

	// SessionID scopes attendance notifications to one session.
	// When empty, only session lifecycle notifications are delivered.
	SessionID string
}

// Subscriber delivers decoded change notifications on a channel. Each
// subscriber always receives session lifecycle events; attendance
// events are delivered only for the configured session.
type Subscriber struct {
	pubsub *redis.PubSub
	events chan *Message
	quit   chan struct{}

	closeOnce sync.Once
}

// NewSubscriber opens a subscription and starts the delivery loop
func NewSubscriber(ctx context.Context, cfg *SubscriberConfig) (*Subscriber, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	channels := []string{sessionsChannel}
	if cfg.SessionID != "" {
		channels = append(channels, attendanceChannelPrefix+cfg.SessionID)
	}

	pubsub := cfg.RedisClient.Subscribe(ctx, channels...)

	// Confirm the subscription before returning so no notification
	// published after this call is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	s := &Subscriber{
		pubsub: pubsub,
		events: make(chan *Message),
		quit:   make(chan struct{}),
	}

	go s.deliver()

	return s, nil
}

// Events returns the channel of decoded notifications. The channel is
// closed when the subscriber is closed or the connection drops.
func (s *Subscriber) Events() <-chan *Message {
	return s.events
}

// Close tears down the subscription. The delivery goroutine exits even
// when nobody is draining Events anymore.
func (s *Subscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.quit)
		err = s.pubsub.Close()
	})
	return err
}

func (s *Subscriber) deliver() {
	defer close(s.events)

	for raw := range s.pubsub.Channel() {
		msg, err := decodeMessage(raw.Payload)
		if err != nil {
			// Undecodable notifications are dropped; the client's
			// resync path covers anything missed.
			continue
		}
		select {
		case s.events <- msg:
		case <-s.quit:
			return
		}
	}
}
