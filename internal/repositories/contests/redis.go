package contests

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
)

// Key scheme:
//
//	contest:<id>            JSON payload of the record
//	contest_msg:<messageID> record ID for the live feed message
//	channel:<id>:contests   set of record IDs posted to the channel
type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// NewRedis creates a Redis-backed contest repository
func NewRedis(client redis.UniversalClient, timeProvider TimeProvider) Repository {
	if timeProvider == nil {
		timeProvider = NewRealTimeProvider()
	}
	return &redisRepo{
		client:       client,
		timeProvider: timeProvider,
	}
}

func contestKey(id string) string        { return fmt.Sprintf("contest:%s", id) }
func messageKey(messageID string) string { return fmt.Sprintf("contest_msg:%s", messageID) }
func channelKey(channelID string) string { return fmt.Sprintf("channel:%s:contests", channelID) }

func (r *redisRepo) set(ctx context.Context, record *contest.Record) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal contest record: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, contestKey(record.ID), string(jsonData), 0)
	pipe.SAdd(ctx, channelKey(record.ChannelID), record.ID)
	if record.MessageID != "" {
		pipe.Set(ctx, messageKey(record.MessageID), record.ID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store contest in Redis: %w", err)
	}

	return nil
}

// Create stores a new contest record
func (r *redisRepo) Create(ctx context.Context, record *contest.Record) error {
	if record == nil {
		return qwerr.InvalidArgument("record cannot be nil")
	}

	now := r.timeProvider.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	return r.set(ctx, record)
}

// Get retrieves a contest record by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*contest.Record, error) {
	jsonData, err := r.client.Get(ctx, contestKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, qwerr.NotFoundf("contest not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get contest from Redis: %w", err)
	}

	var record contest.Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contest record: %w", err)
	}

	return &record, nil
}

// GetByMessage retrieves a contest record by its feed message handle
func (r *redisRepo) GetByMessage(ctx context.Context, messageID string) (*contest.Record, error) {
	id, err := r.client.Get(ctx, messageKey(messageID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, qwerr.NotFoundf("no contest for message: %s", messageID)
		}
		return nil, fmt.Errorf("failed to get message index from Redis: %w", err)
	}

	return r.Get(ctx, id)
}

// Update modifies an existing contest record
func (r *redisRepo) Update(ctx context.Context, record *contest.Record) error {
	if record == nil {
		return qwerr.InvalidArgument("record cannot be nil")
	}

	old, err := r.Get(ctx, record.ID)
	if err != nil {
		return err
	}

	// Drop the stale message index if the card was re-posted
	if old.MessageID != "" && old.MessageID != record.MessageID {
		if err := r.client.Del(ctx, messageKey(old.MessageID)).Err(); err != nil {
			return fmt.Errorf("failed to drop stale message index: %w", err)
		}
	}

	record.UpdatedAt = r.timeProvider.Now()
	return r.set(ctx, record)
}

// Delete removes a contest record
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	record, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, contestKey(id))
	pipe.SRem(ctx, channelKey(record.ChannelID), id)
	if record.MessageID != "" {
		pipe.Del(ctx, messageKey(record.MessageID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete contest from Redis: %w", err)
	}

	return nil
}

// ListByChannel retrieves all contest records posted to a channel
func (r *redisRepo) ListByChannel(ctx context.Context, channelID string) ([]*contest.Record, error) {
	ids, err := r.client.SMembers(ctx, channelKey(channelID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel contests from Redis: %w", err)
	}

	records := make([]*contest.Record, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			record, err := r.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get contest %s: %w", id, err)
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}
