//go:build e2e

package ledger

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type LedgerTestSuite struct {
	suite.Suite
	client *redis.Client
	ledger *Ledger
}

func (s *LedgerTestSuite) SetupSuite() {
	s.client = NewClient("localhost:6379", "", 0)
	if err := s.client.Ping(s.T().Context()).Err(); err != nil {
		s.T().Skipf("redis not available: %v", err)
	}
	s.ledger = New(s.client, time.Minute)
}

func (s *LedgerTestSuite) TearDownSuite() {
	s.client.FlushDB(s.T().Context())
	s.client.Close()
}

func (s *LedgerTestSuite) SetupTest() {
	s.client.FlushDB(s.T().Context())
}

func (s *LedgerTestSuite) TestClaimOncePerLocalDate() {
	ctx := s.T().Context()

	ok, err := s.ledger.Claim(ctx, "c1", "2025-03-04")
	s.NoError(err)
	s.True(ok)

	ok, err = s.ledger.Claim(ctx, "c1", "2025-03-04")
	s.NoError(err)
	s.False(ok)

	ok, err = s.ledger.Claim(ctx, "c1", "2025-03-11")
	s.NoError(err)
	s.True(ok)

	ok, err = s.ledger.Claim(ctx, "c2", "2025-03-04")
	s.NoError(err)
	s.True(ok)
}

func (s *LedgerTestSuite) TestClaimExpires() {
	ctx := s.T().Context()

	_, err := s.ledger.Claim(ctx, "c1", "2025-03-04")
	s.NoError(err)

	ttl, err := s.client.TTL(ctx, Key("c1", "2025-03-04")).Result()
	s.NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func TestLedger(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
