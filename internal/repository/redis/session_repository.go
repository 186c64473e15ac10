package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-agent-be/pkg/agent/state"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	orderKey         = "agent:sessions:order"
	sessionKeyPrefix = "agent:session:"
	opTimeout        = 3 * time.Second
)

// SessionRepository is the Redis-backed session store. Same contract and
// eviction policy as the in-memory one: a hard cap with oldest-created
// sessions evicted first, tracked through an order list.
type SessionRepository struct {
	client *goredis.Client
	limit  int
}

func NewSessionRepository(client *goredis.Client, limit int) *SessionRepository {
	if limit <= 0 {
		limit = 100
	}
	return &SessionRepository{
		client: client,
		limit:  limit,
	}
}

func (r *SessionRepository) GetOrCreate(id string) (string, []state.Turn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if id != "" {
		raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Result()
		if err == nil {
			var history []state.Turn
			if err := json.Unmarshal([]byte(raw), &history); err != nil {
				return "", nil, fmt.Errorf("corrupt session %s: %w", id, err)
			}
			return id, history, nil
		}
		if err != goredis.Nil {
			return "", nil, fmt.Errorf("read session %s: %w", id, err)
		}
	}

	newID := uuid.New().String()
	if err := r.client.Set(ctx, sessionKeyPrefix+newID, "[]", 0).Err(); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	if err := r.client.RPush(ctx, orderKey, newID).Err(); err != nil {
		return "", nil, fmt.Errorf("track session order: %w", err)
	}

	if err := r.evict(ctx); err != nil {
		return "", nil, err
	}

	return newID, nil, nil
}

func (r *SessionRepository) Put(id string, history []state.Turn) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return r.client.Set(ctx, sessionKeyPrefix+id, payload, 0).Err()
}

func (r *SessionRepository) evict(ctx context.Context) error {
	for {
		total, err := r.client.LLen(ctx, orderKey).Result()
		if err != nil {
			return fmt.Errorf("count sessions: %w", err)
		}
		if total <= int64(r.limit) {
			return nil
		}

		oldest, err := r.client.LPop(ctx, orderKey).Result()
		if err != nil {
			return fmt.Errorf("evict oldest session: %w", err)
		}
		if err := r.client.Del(ctx, sessionKeyPrefix+oldest).Err(); err != nil {
			return fmt.Errorf("delete session %s: %w", oldest, err)
		}
	}
}
