package storypoints

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Key scheme:
//
//	storypoints:<channelID>:pool            shared pool counter
//	storypoints:<channelID>:party:<partyID> personal balance counter
type redisRepo struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed story point repository
func NewRedis(client redis.UniversalClient) Repository {
	return &redisRepo{client: client}
}

func poolKey(channelID string) string {
	return fmt.Sprintf("storypoints:%s:pool", channelID)
}

func balanceKey(channelID, partyID string) string {
	return fmt.Sprintf("storypoints:%s:party:%s", channelID, partyID)
}

func (r *redisRepo) getCounter(ctx context.Context, key string) (int, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get counter from Redis: %w", err)
	}

	points, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter at %s: %w", key, err)
	}
	return points, nil
}

func (r *redisRepo) setCounter(ctx context.Context, key string, points int) error {
	if err := r.client.Set(ctx, key, strconv.Itoa(points), 0).Err(); err != nil {
		return fmt.Errorf("failed to set counter in Redis: %w", err)
	}
	return nil
}

// GetPool returns the shared pool for a channel
func (r *redisRepo) GetPool(ctx context.Context, channelID string) (int, error) {
	return r.getCounter(ctx, poolKey(channelID))
}

// SetPool overwrites the shared pool for a channel
func (r *redisRepo) SetPool(ctx context.Context, channelID string, points int) error {
	return r.setCounter(ctx, poolKey(channelID), points)
}

// GetBalance returns a party's personal balance
func (r *redisRepo) GetBalance(ctx context.Context, channelID, partyID string) (int, error) {
	return r.getCounter(ctx, balanceKey(channelID, partyID))
}

// SetBalance overwrites a party's personal balance
func (r *redisRepo) SetBalance(ctx context.Context, channelID, partyID string, points int) error {
	return r.setCounter(ctx, balanceKey(channelID, partyID), points)
}
