package session

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"time"
)

type RedisBackend struct {
	redisClient *redis.Client
	expiration  time.Duration
}

func NewRedisBackend(redisClient *redis.Client, expiration time.Duration) *RedisBackend {
	return &RedisBackend{
		redisClient: redisClient,
		expiration:  expiration,
	}
}

func (b *RedisBackend) Save(ctx context.Context, id string, snapshot Snapshot) error {
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return b.redisClient.Set(ctx, b.getRedisKey(id), bytes, b.expiration).Err()
}

func (b *RedisBackend) Load(ctx context.Context, id string) (Snapshot, bool) {
	val, err := b.redisClient.Get(ctx, b.getRedisKey(id)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Errorf("Error loading session: %v", err)
		}
		return Snapshot{}, false
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		log.Errorf("Error unmarshalling session: %s", err)
		return Snapshot{}, false
	}

	// Sliding expiration
	b.redisClient.Expire(ctx, b.getRedisKey(id), b.expiration)
	return snapshot, true
}

func (b *RedisBackend) Delete(ctx context.Context, id string) {
	if err := b.redisClient.Del(ctx, b.getRedisKey(id)).Err(); err != nil {
		log.Errorf("Error deleting session: %v", err)
	}
}

func (b *RedisBackend) getRedisKey(id string) string {
	return fmt.Sprintf("session__%s", id)
}
