package contests

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/stormhall/qw-bot-discord/internal/domain/contest"
	qwerr "github.com/stormhall/qw-bot-discord/internal/errors"
	"github.com/stormhall/qw-bot-discord/internal/rating"
)

type fixedTimeProvider struct {
	now time.Time
}

func (f fixedTimeProvider) Now() time.Time { return f.now }

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
	now        time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.now = time.Date(2024, 11, 2, 20, 15, 0, 0, time.UTC)
	s.repo = NewRedis(s.mockClient, fixedTimeProvider{now: s.now})
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) record() *contest.Record {
	return &contest.Record{
		ID:        "contest-1",
		OwnerID:   "player-1",
		ChannelID: "channel-1",
		MessageID: "msg-1",
		Tactic:    rating.New(15, 0),
		Benefits:  map[string]*contest.BenefitModifier{},
	}
}

func (s *RedisRepoTestSuite) marshaled(record *contest.Record) string {
	data, err := json.Marshal(record)
	s.Require().NoError(err)
	return string(data)
}

func (s *RedisRepoTestSuite) TestCreate() {
	ctx := context.Background()
	record := s.record()

	expected := record.Clone()
	expected.CreatedAt = s.now
	expected.UpdatedAt = s.now

	s.mock.ExpectSet("contest:contest-1", s.marshaled(expected), 0).SetVal("OK")
	s.mock.ExpectSAdd("channel:channel-1:contests", "contest-1").SetVal(1)
	s.mock.ExpectSet("contest_msg:msg-1", "contest-1", 0).SetVal("OK")

	s.NoError(s.repo.Create(ctx, record))

	// Input validation
	s.Error(s.repo.Create(ctx, nil))
}

func (s *RedisRepoTestSuite) TestCreate_RedisError() {
	ctx := context.Background()
	record := s.record()

	expected := record.Clone()
	expected.CreatedAt = s.now
	expected.UpdatedAt = s.now

	s.mock.ExpectSet("contest:contest-1", s.marshaled(expected), 0).SetErr(errors.New("redis error"))
	s.mock.ExpectSAdd("channel:channel-1:contests", "contest-1").SetVal(1)
	s.mock.ExpectSet("contest_msg:msg-1", "contest-1", 0).SetVal("OK")

	s.Error(s.repo.Create(ctx, record))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()

	stored := s.record()
	stored.CreatedAt = s.now
	stored.UpdatedAt = s.now
	s.mock.ExpectGet("contest:contest-1").SetVal(s.marshaled(stored))

	got, err := s.repo.Get(ctx, "contest-1")
	s.Require().NoError(err)
	s.Equal("contest-1", got.ID)
	s.Equal(rating.New(15, 0), got.Tactic)
}

func (s *RedisRepoTestSuite) TestGet_NotFound() {
	ctx := context.Background()
	s.mock.ExpectGet("contest:missing").RedisNil()

	_, err := s.repo.Get(ctx, "missing")
	s.Require().Error(err)
	s.True(qwerr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestGetByMessage() {
	ctx := context.Background()

	stored := s.record()
	s.mock.ExpectGet("contest_msg:msg-1").SetVal("contest-1")
	s.mock.ExpectGet("contest:contest-1").SetVal(s.marshaled(stored))

	got, err := s.repo.GetByMessage(ctx, "msg-1")
	s.Require().NoError(err)
	s.Equal("contest-1", got.ID)
}

func (s *RedisRepoTestSuite) TestUpdate_RepostDropsStaleIndex() {
	ctx := context.Background()

	stored := s.record()
	s.mock.ExpectGet("contest:contest-1").SetVal(s.marshaled(stored))

	reposted := s.record()
	reposted.MessageID = "msg-2"

	expected := reposted.Clone()
	expected.UpdatedAt = s.now

	s.mock.ExpectDel("contest_msg:msg-1").SetVal(1)
	s.mock.ExpectSet("contest:contest-1", s.marshaled(expected), 0).SetVal("OK")
	s.mock.ExpectSAdd("channel:channel-1:contests", "contest-1").SetVal(0)
	s.mock.ExpectSet("contest_msg:msg-2", "contest-1", 0).SetVal("OK")

	s.NoError(s.repo.Update(ctx, reposted))
}

func (s *RedisRepoTestSuite) TestDelete() {
	ctx := context.Background()

	stored := s.record()
	s.mock.ExpectGet("contest:contest-1").SetVal(s.marshaled(stored))

	s.mock.ExpectDel("contest:contest-1").SetVal(1)
	s.mock.ExpectSRem("channel:channel-1:contests", "contest-1").SetVal(1)
	s.mock.ExpectDel("contest_msg:msg-1").SetVal(1)

	s.NoError(s.repo.Delete(ctx, "contest-1"))
}

func (s *RedisRepoTestSuite) TestListByChannel() {
	ctx := context.Background()

	s.mock.ExpectSMembers("channel:channel-1:contests").SetVal([]string{"contest-1"})
	s.mock.ExpectGet("contest:contest-1").SetVal(s.marshaled(s.record()))

	records, err := s.repo.ListByChannel(ctx, "channel-1")
	s.Require().NoError(err)
	s.Len(records, 1)
	s.Equal("contest-1", records[0].ID)
}
