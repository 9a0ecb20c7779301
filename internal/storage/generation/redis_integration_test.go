//go:build integration

package generation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bloodlink/internal/storage/generation"
	id "bloodlink/pkg/domain"
	"bloodlink/pkg/testutil/containers"
)

type RedisCounterSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	counter *generation.RedisCounter
}

func TestRedisCounterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCounterSuite))
}

func (s *RedisCounterSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.counter = generation.NewRedisCounter(s.redis.Client)
}

func (s *RedisCounterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCounterSuite) TestGenerationsSurviveNewClient() {
	ctx := context.Background()
	requestID := id.RequestID(uuid.New())

	gen, err := s.counter.Next(ctx, requestID)
	s.Require().NoError(err)
	s.Equal(int64(1), gen)

	other := generation.NewRedisCounter(s.redis.Client)
	gen, err = other.Next(ctx, requestID)
	s.Require().NoError(err)
	s.Equal(int64(2), gen)
}
