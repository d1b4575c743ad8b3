package contests_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
	"github.com/stormhall/qw-bot-discord/internal/rating"
	"github.com/stormhall/qw-bot-discord/internal/repositories/contests"
)

func testRecord(id, channelID, messageID string) *contest.Record {
	return &contest.Record{
		ID:        id,
		OwnerID:   "player-1",
		ChannelID: channelID,
		MessageID: messageID,
		Tactic:    rating.New(15, 0),
		Benefits:  map[string]*contest.BenefitModifier{},
	}
}

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := contests.NewInMemoryRepository()

	record := testRecord("contest-1", "channel-1", "msg-1")
	require.NoError(t, repo.Create(ctx, record))

	got, err := repo.Get(ctx, "contest-1")
	require.NoError(t, err)
	assert.Equal(t, "contest-1", got.ID)
	assert.Equal(t, rating.New(15, 0), got.Tactic)
	assert.False(t, got.CreatedAt.IsZero())

	// Duplicate create is rejected
	err = repo.Create(ctx, testRecord("contest-1", "channel-1", "msg-2"))
	require.Error(t, err)
	assert.True(t, qwerr.Is(err, qwerr.CodeAlreadyExists))
}

func TestInMemoryRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := contests.NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, testRecord("contest-1", "channel-1", "msg-1")))

	got, err := repo.Get(ctx, "contest-1")
	require.NoError(t, err)
	got.Closed = true

	again, err := repo.Get(ctx, "contest-1")
	require.NoError(t, err)
	assert.False(t, again.Closed)
}

func TestInMemoryRepository_GetByMessage(t *testing.T) {
	ctx := context.Background()
	repo := contests.NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, testRecord("contest-1", "channel-1", "msg-1")))

	got, err := repo.GetByMessage(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "contest-1", got.ID)

	_, err = repo.GetByMessage(ctx, "msg-unknown")
	require.Error(t, err)
	assert.True(t, qwerr.IsNotFound(err))
}

func TestInMemoryRepository_UpdateRepostedCard(t *testing.T) {
	ctx := context.Background()
	repo := contests.NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, testRecord("contest-1", "channel-1", "msg-1")))

	reposted := testRecord("contest-1", "channel-1", "msg-2")
	require.NoError(t, repo.Update(ctx, reposted))

	got, err := repo.GetByMessage(ctx, "msg-2")
	require.NoError(t, err)
	assert.Equal(t, "contest-1", got.ID)

	// Stale handle no longer resolves
	_, err = repo.GetByMessage(ctx, "msg-1")
	require.Error(t, err)
}

func TestInMemoryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := contests.NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, testRecord("contest-1", "channel-1", "msg-1")))

	require.NoError(t, repo.Delete(ctx, "contest-1"))

	_, err := repo.Get(ctx, "contest-1")
	require.Error(t, err)
	assert.True(t, qwerr.IsNotFound(err))

	records, err := repo.ListByChannel(ctx, "channel-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInMemoryRepository_ListByChannel(t *testing.T) {
	ctx := context.Background()
	repo := contests.NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, testRecord("contest-1", "channel-1", "msg-1")))
	require.NoError(t, repo.Create(ctx, testRecord("contest-2", "channel-1", "msg-2")))
	require.NoError(t, repo.Create(ctx, testRecord("contest-3", "channel-2", "msg-3")))

	records, err := repo.ListByChannel(ctx, "channel-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
