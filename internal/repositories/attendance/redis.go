package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firewatch/muster/internal/changefeed"
	"github.com/firewatch/muster/internal/models"
	"github.com/redis/go-redis/v9"
)

// attendanceKeyPrefix keys one hash per session; hash fields are
// employee IDs. Field uniqueness is what enforces the one-record-per-
// (session, employee) invariant.
const attendanceKeyPrefix = "attendance:"

// ErrRecordNotFound is returned when no record exists for a pair
var ErrRecordNotFound = errors.New("attendance record not found")

// Config holds configuration for the Redis attendance repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Feed publisher for change notifications, optional
	Feed *changefeed.Publisher
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	feed   *changefeed.Publisher
}

// NewRedis creates a new Redis-backed attendance repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &redisRepository{
		client: cfg.RedisClient,
		feed:   cfg.Feed,
	}, nil
}

// UpsertRecord writes the full row for the record's (session, employee)
// pair, overwriting any existing value. Last writer wins.
func (r *redisRepository) UpsertRecord(ctx context.Context, input *UpsertRecordInput) error {
	if input == nil || input.Record == nil {
		return errors.New("input and record cannot be nil")
	}

	if input.Record.SessionID == "" || input.Record.EmployeeID == "" {
		return errors.New("session ID and employee ID cannot be empty")
	}

	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return fmt.Errorf("failed to marshal attendance record: %w", err)
	}

	created, err := r.client.HSet(ctx, attendanceKeyPrefix+input.Record.SessionID, input.Record.EmployeeID, recordJSON).Result()
	if err != nil {
		return fmt.Errorf("failed to upsert attendance record: %w", err)
	}

	kind := changefeed.KindUpdate
	if created > 0 {
		kind = changefeed.KindInsert
	}

	// Best-effort notification; a missed event is repaired by the
	// client's full reload.
	if r.feed != nil {
		_ = r.feed.AttendanceChanged(ctx, kind, input.Record)
	}

	return nil
}

// GetRecord retrieves one record by (session, employee) pair from Redis
func (r *redisRepository) GetRecord(ctx context.Context, input *GetRecordInput) (*models.AttendanceRecord, error) {
	if input == nil || input.SessionID == "" || input.EmployeeID == "" {
		return nil, errors.New("input, session ID and employee ID cannot be empty")
	}

	recordJSON, err := r.client.HGet(ctx, attendanceKeyPrefix+input.SessionID, input.EmployeeID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	var record models.AttendanceRecord
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attendance record: %w", err)
	}

	return &record, nil
}

// ListBySession retrieves all records for a session from Redis
func (r *redisRepository) ListBySession(ctx context.Context, input *ListBySessionInput) (*ListBySessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	rows, err := r.client.HGetAll(ctx, attendanceKeyPrefix+input.SessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	records := make([]*models.AttendanceRecord, 0, len(rows))
	for employeeID, recordJSON := range rows {
		var record models.AttendanceRecord
		if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attendance record %s: %w", employeeID, err)
		}
		records = append(records, &record)
	}

	return &ListBySessionOutput{
		Records: records,
	}, nil
}

// DeleteBySession removes a session's entire attendance hash. No
// per-record notifications are published: subscribers drop their view
// when the session itself goes away.
func (r *redisRepository) DeleteBySession(ctx context.Context, input *DeleteBySessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	if err := r.client.Del(ctx, attendanceKeyPrefix+input.SessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete attendance records: %w", err)
	}

	return nil
}
