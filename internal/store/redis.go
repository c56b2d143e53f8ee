package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

// snapshotTTL bounds how long an abandoned attempt stays resumable.
const snapshotTTL = 7 * 24 * time.Hour

// RedisSessionStore keeps in-flight session snapshots in redis so resume
// works across bot restarts and multiple replicas.
type RedisSessionStore struct {
	client *redis.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// ConnectRedis creates a redis client from a URL.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (r *RedisSessionStore) PutInProgress(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, inflightKey(s.UserID), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("put in-progress: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) GetInProgress(ctx context.Context, userID int64) (*models.Session, error) {
	data, err := r.client.Get(ctx, inflightKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get in-progress: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) DeleteInProgress(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, inflightKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete in-progress: %w", err)
	}
	return nil
}

func inflightKey(userID int64) string {
	return "inflight:" + strconv.FormatInt(userID, 10)
}
