package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/firewatch/muster/internal/changefeed"
	"github.com/firewatch/muster/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix  = "drill_session:"
	activeSessionsKey = "active_sessions"
	sessionsByStart   = "sessions:by_start" // Index ordered by start time
)

// DefaultListLimit bounds session listings when no limit is given
const DefaultListLimit = 50

// ErrSessionNotFound is returned when a session is not found
var ErrSessionNotFound = errors.New("session not found")

// Config holds configuration for the Redis session repository
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

// NewRedis creates a new Redis-backed session repository
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

// CreateSession persists a new session to Redis
func (r *redisRepository) CreateSession(ctx context.Context, input *CreateSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	if err := r.save(ctx, input.Session); err != nil {
		return err
	}

	r.notify(ctx, changefeed.KindInsert, input.Session)
	return nil
}

// UpdateSession rewrites an existing session in Redis
func (r *redisRepository) UpdateSession(ctx context.Context, input *UpdateSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	if err := r.save(ctx, input.Session); err != nil {
		return err
	}

	r.notify(ctx, changefeed.KindUpdate, input.Session)
	return nil
}

// GetSession retrieves a session by ID from Redis
func (r *redisRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.DrillSession, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	sessionJSON, err := r.client.Get(ctx, sessionKeyPrefix+input.SessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.DrillSession
	if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// ListSessions retrieves sessions from Redis newest first, bounded by
// the input limit
func (r *redisRepository) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	limit := DefaultListLimit
	if input != nil && input.Limit > 0 {
		limit = input.Limit
	}

	sessionIDs, err := r.client.ZRevRange(ctx, sessionsByStart, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session IDs: %w", err)
	}

	sessions, err := r.fetchSessions(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	return &ListSessionsOutput{
		Sessions: sessions,
	}, nil
}

// ListActiveSessions retrieves all active sessions from Redis newest first
func (r *redisRepository) ListActiveSessions(ctx context.Context, input *ListActiveSessionsInput) (*ListActiveSessionsOutput, error) {
	sessionIDs, err := r.client.SMembers(ctx, activeSessionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get active session IDs: %w", err)
	}

	sessions, err := r.fetchSessions(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	return &ListActiveSessionsOutput{
		Sessions: sessions,
	}, nil
}

// DeleteSession removes a session from Redis
func (r *redisRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	// Get the session first so the delete notification carries the row
	session, err := r.GetSession(ctx, &GetSessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, sessionKeyPrefix+input.SessionID)
	pipe.SRem(ctx, activeSessionsKey, input.SessionID)
	pipe.ZRem(ctx, sessionsByStart, input.SessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	r.notify(ctx, changefeed.KindDelete, session)
	return nil
}

// save writes the session row and maintains the active set and the
// start-time index
func (r *redisRepository) save(ctx context.Context, session *models.DrillSession) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, sessionJSON, 0)
	pipe.ZAdd(ctx, sessionsByStart, redis.Z{
		Score:  float64(session.StartedAt.UnixNano()),
		Member: session.ID,
	})

	if session.Active {
		pipe.SAdd(ctx, activeSessionsKey, session.ID)
	} else {
		pipe.SRem(ctx, activeSessionsKey, session.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// notify publishes a change notification. Delivery is best effort:
// subscribers that miss an event recover with a full reload.
func (r *redisRepository) notify(ctx context.Context, kind changefeed.Kind, session *models.DrillSession) {
	if r.feed == nil {
		return
	}
	_ = r.feed.SessionChanged(ctx, kind, session)
}

// fetchSessions loads session records and sorts them newest first
func (r *redisRepository) fetchSessions(ctx context.Context, sessionIDs []string) ([]*models.DrillSession, error) {
	if len(sessionIDs) == 0 {
		return []*models.DrillSession{}, nil
	}

	pipe := r.client.Pipeline()
	commands := make(map[string]*redis.StringCmd)

	for _, sessionID := range sessionIDs {
		commands[sessionID] = pipe.Get(ctx, sessionKeyPrefix+sessionID)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	sessions := make([]*models.DrillSession, 0, len(sessionIDs))
	for sessionID, cmd := range commands {
		sessionJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Deleted between listing the IDs and fetching the record
				continue
			}
			return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
		}

		var session models.DrillSession
		if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
		}

		sessions = append(sessions, &session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	return sessions, nil
}
