package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/firewatch/muster/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type ChangeFeedTestSuite struct {
	suite.Suite
	mr        *miniredis.Miniredis
	client    *redis.Client
	publisher *Publisher
	testNow   time.Time
}

func (s *ChangeFeedTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	publisher, err := NewPublisher(&PublisherConfig{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.publisher = publisher

	s.testNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
}

func (s *ChangeFeedTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestChangeFeedTestSuite(t *testing.T) {
	suite.Run(t, new(ChangeFeedTestSuite))
}

func (s *ChangeFeedTestSuite) receive(sub *Subscriber) *Message {
	select {
	case msg, ok := <-sub.Events():
		s.Require().True(ok, "subscriber closed unexpectedly")
		return msg
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for feed message")
		return nil
	}
}

func (s *ChangeFeedTestSuite) TestAttendanceDelivery() {
	sub, err := NewSubscriber(context.Background(), &SubscriberConfig{
		RedisClient: s.client,
		SessionID:   "test-session-id",
	})
	s.Require().NoError(err)
	defer sub.Close()

	record := &models.AttendanceRecord{
		SessionID:   "test-session-id",
		EmployeeID:  "test-employee-id",
		Status:      models.StatusMissing,
		Note:        "last seen on floor 3",
		MarshalName: "Avery",
		UpdatedAt:   s.testNow,
	}

	err = s.publisher.AttendanceChanged(context.Background(), KindUpdate, record)
	s.Require().NoError(err)

	msg := s.receive(sub)
	s.Equal(KindUpdate, msg.Kind)
	s.Equal(TableAttendance, msg.Table)
	s.Require().NotNil(msg.Attendance)
	s.Nil(msg.Session)

	s.Equal("test-employee-id", msg.Attendance.EmployeeID)
	s.Equal(models.StatusMissing, msg.Attendance.Status)
	s.Equal("last seen on floor 3", msg.Attendance.Note)
	s.Equal("Avery", msg.Attendance.MarshalName)
}

func (s *ChangeFeedTestSuite) TestAttendanceScopedToSession() {
	sub, err := NewSubscriber(context.Background(), &SubscriberConfig{
		RedisClient: s.client,
		SessionID:   "session-a",
	})
	s.Require().NoError(err)
	defer sub.Close()

	// A write in another session must not reach this subscriber
	err = s.publisher.AttendanceChanged(context.Background(), KindInsert, &models.AttendanceRecord{
		SessionID:  "session-b",
		EmployeeID: "test-employee-id",
		Status:     models.StatusPresent,
		UpdatedAt:  s.testNow,
	})
	s.Require().NoError(err)

	// Session events still flow, which also proves the first publish
	// had time to arrive had it been in scope
	err = s.publisher.SessionChanged(context.Background(), KindInsert, &models.DrillSession{
		ID:        "session-c",
		StartedAt: s.testNow,
		Active:    true,
	})
	s.Require().NoError(err)

	msg := s.receive(sub)
	s.Equal(TableSessions, msg.Table)
	s.Require().NotNil(msg.Session)
	s.Equal("session-c", msg.Session.ID)
}

func (s *ChangeFeedTestSuite) TestSessionDeliveryWithoutScope() {
	// A subscriber with no session still sees lifecycle events
	sub, err := NewSubscriber(context.Background(), &SubscriberConfig{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	defer sub.Close()

	session := &models.DrillSession{
		ID:        "test-session-id",
		StartedBy: "Avery",
		StartedAt: s.testNow,
		Active:    true,
	}

	err = s.publisher.SessionChanged(context.Background(), KindInsert, session)
	s.Require().NoError(err)

	msg := s.receive(sub)
	s.Equal(KindInsert, msg.Kind)
	s.Require().NotNil(msg.Session)
	s.Equal("Avery", msg.Session.StartedBy)
	s.True(msg.Session.Active)
}

func (s *ChangeFeedTestSuite) TestCloseUnblocksUndrainedDelivery() {
	// A consumer that stops draining Events mid-stream (a dropped
	// websocket, say) must not strand the delivery goroutine on its
	// pending send when the subscriber is closed.
	subs := make([]*Subscriber, 0, 10)
	for i := 0; i < 10; i++ {
		sub, err := NewSubscriber(context.Background(), &SubscriberConfig{
			RedisClient: s.client,
		})
		s.Require().NoError(err)
		subs = append(subs, sub)
	}

	err := s.publisher.SessionChanged(context.Background(), KindInsert, &models.DrillSession{
		ID:        "test-session-id",
		StartedAt: s.testNow,
		Active:    true,
	})
	s.Require().NoError(err)

	// Give every delivery goroutine time to pick up the notification
	// and block on its send before anyone reads
	time.Sleep(100 * time.Millisecond)

	for _, sub := range subs {
		s.Require().NoError(sub.Close())
	}

	// Each events channel closing proves its delivery goroutine exited.
	// The pending notification may still slip through first, so drain
	// until the close.
	for _, sub := range subs {
		deadline := time.After(2 * time.Second)
		for open := true; open; {
			select {
			case _, ok := <-sub.Events():
				open = ok
			case <-deadline:
				s.FailNow("delivery goroutine is stuck on an undrained send")
			}
		}
	}
}

func (s *ChangeFeedTestSuite) TestCloseEndsEventStream() {
	sub, err := NewSubscriber(context.Background(), &SubscriberConfig{
		RedisClient: s.client,
	})
	s.Require().NoError(err)

	s.Require().NoError(sub.Close())

	select {
	case _, ok := <-sub.Events():
		s.False(ok)
	case <-time.After(2 * time.Second):
		s.FailNow("events channel was not closed")
	}
}
