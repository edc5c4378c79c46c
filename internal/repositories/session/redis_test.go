package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/firewatch/muster/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) session(id string, startedAt time.Time, active bool) *models.DrillSession {
	return &models.DrillSession{
		ID:        id,
		StartedBy: "Avery",
		StartedAt: startedAt,
		Active:    active,
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGetSession() {
	err := s.repo.CreateSession(context.Background(), &CreateSessionInput{
		Session: s.session("test-session-id", s.testNow, true),
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)

	s.Equal("test-session-id", retrieved.ID)
	s.Equal("Avery", retrieved.StartedBy)
	s.True(retrieved.Active)
	s.Nil(retrieved.EndedAt)
	s.Equal(s.testNow.Unix(), retrieved.StartedAt.Unix())
}

func (s *RedisRepositoryTestSuite) TestGetSessionNotFound() {
	_, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "missing-session",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisRepositoryTestSuite) TestListSessionsNewestFirst() {
	for i, id := range []string{"first", "second", "third"} {
		err := s.repo.CreateSession(context.Background(), &CreateSessionInput{
			Session: s.session(id, s.testNow.Add(time.Duration(i)*time.Minute), true),
		})
		s.Require().NoError(err)
	}

	output, err := s.repo.ListSessions(context.Background(), &ListSessionsInput{})
	s.Require().NoError(err)
	s.Require().Len(output.Sessions, 3)

	s.Equal("third", output.Sessions[0].ID)
	s.Equal("second", output.Sessions[1].ID)
	s.Equal("first", output.Sessions[2].ID)
}

func (s *RedisRepositoryTestSuite) TestListSessionsBoundedPage() {
	for i := 0; i < 5; i++ {
		err := s.repo.CreateSession(context.Background(), &CreateSessionInput{
			Session: s.session(string(rune('a'+i)), s.testNow.Add(time.Duration(i)*time.Minute), true),
		})
		s.Require().NoError(err)
	}

	output, err := s.repo.ListSessions(context.Background(), &ListSessionsInput{
		Limit: 2,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Sessions, 2)
	s.Equal("e", output.Sessions[0].ID)
	s.Equal("d", output.Sessions[1].ID)
}

func (s *RedisRepositoryTestSuite) TestListActiveSessions() {
	err := s.repo.CreateSession(context.Background(), &CreateSessionInput{
		Session: s.session("active-one", s.testNow, true),
	})
	s.Require().NoError(err)

	ended := s.session("ended-one", s.testNow.Add(time.Minute), false)
	endedAt := s.testNow.Add(2 * time.Minute)
	ended.EndedAt = &endedAt
	err = s.repo.CreateSession(context.Background(), &CreateSessionInput{
		Session: ended,
	})
	s.Require().NoError(err)

	output, err := s.repo.ListActiveSessions(context.Background(), &ListActiveSessionsInput{})
	s.Require().NoError(err)
	s.Require().Len(output.Sessions, 1)
	s.Equal("active-one", output.Sessions[0].ID)
}

func (s *RedisRepositoryTestSuite) TestUpdateSessionLeavesActiveSet() {
	session := s.session("test-session-id", s.testNow, true)
	err := s.repo.CreateSession(context.Background(), &CreateSessionInput{
		Session: session,
	})
	s.Require().NoError(err)

	endedAt := s.testNow.Add(10 * time.Minute)
	session.Active = false
	session.EndedAt = &endedAt
	session.EndedBy = "Blake"

	err = s.repo.UpdateSession(context.Background(), &UpdateSessionInput{
		Session: session,
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.False(retrieved.Active)
	s.Require().NotNil(retrieved.EndedAt)
	s.Equal(endedAt.Unix(), retrieved.EndedAt.Unix())
	s.Equal("Blake", retrieved.EndedBy)

	active, err := s.repo.ListActiveSessions(context.Background(), &ListActiveSessionsInput{})
	s.Require().NoError(err)
	s.Empty(active.Sessions)
}

func (s *RedisRepositoryTestSuite) TestDeleteSession() {
	err := s.repo.CreateSession(context.Background(), &CreateSessionInput{
		Session: s.session("test-session-id", s.testNow, true),
	})
	s.Require().NoError(err)

	err = s.repo.DeleteSession(context.Background(), &DeleteSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)

	_, err = s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	output, err := s.repo.ListSessions(context.Background(), &ListSessionsInput{})
	s.Require().NoError(err)
	s.Empty(output.Sessions)

	active, err := s.repo.ListActiveSessions(context.Background(), &ListActiveSessionsInput{})
	s.Require().NoError(err)
	s.Empty(active.Sessions)
}

func (s *RedisRepositoryTestSuite) TestDeleteSessionNotFound() {
	err := s.repo.DeleteSession(context.Background(), &DeleteSessionInput{
		SessionID: "missing-session",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}
