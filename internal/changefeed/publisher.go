package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firewatch/muster/internal/models"
	"github.com/redis/go-redis/v9"
)

// PublisherConfig holds configuration for the feed publisher
type PublisherConfig struct {
	// Redis client
	RedisClient *redis.Client
}

// Publisher emits change notifications after committed store writes.
// Delivery is fire-and-forget: subscribers that miss notifications
// repair themselves with a full reload.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a feed publisher
func NewPublisher(cfg *PublisherConfig) (*Publisher, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &Publisher{
		client: cfg.RedisClient,
	}, nil
}

// AttendanceChanged publishes a notification for an attendance write,
// scoped to the record's session channel.
func (p *Publisher) AttendanceChanged(ctx context.Context, kind Kind, record *models.AttendanceRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	payload, err := encodeEnvelope(kind, TableAttendance, record)
	if err != nil {
		return err
	}

	channel := attendanceChannelPrefix + record.SessionID
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish attendance change: %w", err)
	}

	return nil
}

// SessionChanged publishes a notification for a session write on the
// shared sessions channel.
func (p *Publisher) SessionChanged(ctx context.Context, kind Kind, session *models.DrillSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	payload, err := encodeEnvelope(kind, TableSessions, session)
	if err != nil {
		return err
	}

	if err := p.client.Publish(ctx, sessionsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish session change: %w", err)
	}

	return nil
}

func encodeEnvelope(kind Kind, table Table, row any) (string, error) {
	rowJSON, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("failed to marshal feed row: %w", err)
	}

	payload, err := json.Marshal(&envelope{
		Kind:  kind,
		Table: table,
		Row:   rowJSON,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal feed envelope: %w", err)
	}

	return string(payload), nil
}
