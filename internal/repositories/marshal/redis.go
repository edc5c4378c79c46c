package marshal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/firewatch/muster/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	marshalKeyPrefix = "marshal:"
	marshalsKey      = "marshals"
)

// ErrMarshalNotFound is returned when a marshal is not found
var ErrMarshalNotFound = errors.New("marshal not found")

// Config holds configuration for the Redis marshal repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed marshal repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveMarshal persists a marshal to Redis
func (r *redisRepository) SaveMarshal(ctx context.Context, input *SaveMarshalInput) error {
	if input == nil || input.Marshal == nil {
		return errors.New("input and marshal cannot be nil")
	}

	marshalJSON, err := json.Marshal(input.Marshal)
	if err != nil {
		return fmt.Errorf("failed to marshal marshal record: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, marshalKeyPrefix+input.Marshal.ID, marshalJSON, 0)
	pipe.SAdd(ctx, marshalsKey, input.Marshal.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save marshal: %w", err)
	}

	return nil
}

// GetMarshal retrieves a marshal by ID from Redis
func (r *redisRepository) GetMarshal(ctx context.Context, input *GetMarshalInput) (*models.Marshal, error) {
	if input == nil || input.MarshalID == "" {
		return nil, errors.New("input and marshal ID cannot be empty")
	}

	marshalJSON, err := r.client.Get(ctx, marshalKeyPrefix+input.MarshalID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMarshalNotFound
		}
		return nil, fmt.Errorf("failed to get marshal: %w", err)
	}

	var m models.Marshal
	if err := json.Unmarshal([]byte(marshalJSON), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal marshal record: %w", err)
	}

	return &m, nil
}

// ListMarshals retrieves all marshals from Redis, ordered by name
func (r *redisRepository) ListMarshals(ctx context.Context, input *ListMarshalsInput) (*ListMarshalsOutput, error) {
	marshalIDs, err := r.client.SMembers(ctx, marshalsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get marshal IDs: %w", err)
	}

	if len(marshalIDs) == 0 {
		return &ListMarshalsOutput{
			Marshals: []*models.Marshal{},
		}, nil
	}

	pipe := r.client.Pipeline()
	commands := make(map[string]*redis.StringCmd)

	for _, marshalID := range marshalIDs {
		commands[marshalID] = pipe.Get(ctx, marshalKeyPrefix+marshalID)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get marshals: %w", err)
	}

	marshals := make([]*models.Marshal, 0, len(marshalIDs))
	for marshalID, cmd := range commands {
		marshalJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Deleted between listing the IDs and fetching the record
				continue
			}
			return nil, fmt.Errorf("failed to get marshal %s: %w", marshalID, err)
		}

		var m models.Marshal
		if err := json.Unmarshal([]byte(marshalJSON), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal marshal %s: %w", marshalID, err)
		}

		marshals = append(marshals, &m)
	}

	sort.Slice(marshals, func(i, j int) bool {
		return strings.ToLower(marshals[i].Name) < strings.ToLower(marshals[j].Name)
	})

	return &ListMarshalsOutput{
		Marshals: marshals,
	}, nil
}

// DeleteMarshal removes a marshal from Redis
func (r *redisRepository) DeleteMarshal(ctx context.Context, input *DeleteMarshalInput) error {
	if input == nil || input.MarshalID == "" {
		return errors.New("input and marshal ID cannot be empty")
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, marshalKeyPrefix+input.MarshalID)
	pipe.SRem(ctx, marshalsKey, input.MarshalID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete marshal: %w", err)
	}

	return nil
}
