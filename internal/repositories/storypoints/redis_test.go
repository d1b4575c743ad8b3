package storypoints

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = NewRedis(s.mockClient)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestGetPool() {
	ctx := context.Background()
	s.mock.ExpectGet("storypoints:channel-1:pool").SetVal("3")

	points, err := s.repo.GetPool(ctx, "channel-1")
	s.Require().NoError(err)
	s.Equal(3, points)
}

func (s *RedisRepoTestSuite) TestGetPool_Unset() {
	ctx := context.Background()
	s.mock.ExpectGet("storypoints:channel-1:pool").RedisNil()

	points, err := s.repo.GetPool(ctx, "channel-1")
	s.Require().NoError(err)
	s.Equal(0, points)
}

func (s *RedisRepoTestSuite) TestGetPool_Corrupt() {
	ctx := context.Background()
	s.mock.ExpectGet("storypoints:channel-1:pool").SetVal("not-a-number")

	_, err := s.repo.GetPool(ctx, "channel-1")
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestSetPool() {
	ctx := context.Background()
	s.mock.ExpectSet("storypoints:channel-1:pool", "4", 0).SetVal("OK")

	s.NoError(s.repo.SetPool(ctx, "channel-1", 4))
}

func (s *RedisRepoTestSuite) TestSetPool_RedisError() {
	ctx := context.Background()
	s.mock.ExpectSet("storypoints:channel-1:pool", "4", 0).SetErr(errors.New("redis error"))

	s.Error(s.repo.SetPool(ctx, "channel-1", 4))
}

func (s *RedisRepoTestSuite) TestBalanceRoundTrip() {
	ctx := context.Background()
	s.mock.ExpectSet("storypoints:channel-1:party:party-1", "2", 0).SetVal("OK")
	s.mock.ExpectGet("storypoints:channel-1:party:party-1").SetVal("2")

	s.Require().NoError(s.repo.SetBalance(ctx, "channel-1", "party-1", 2))

	points, err := s.repo.GetBalance(ctx, "channel-1", "party-1")
	s.Require().NoError(err)
	s.Equal(2, points)
}
