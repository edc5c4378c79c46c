package client

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/firewatch/muster/internal/changefeed"
	"github.com/firewatch/muster/internal/common/clock"
	"github.com/firewatch/muster/internal/common/uuid"
	"github.com/firewatch/muster/internal/models"
	attendanceRepo "github.com/firewatch/muster/internal/repositories/attendance"
	employeeRepo "github.com/firewatch/muster/internal/repositories/employee"
	marshalRepo "github.com/firewatch/muster/internal/repositories/marshal"
	sessionRepo "github.com/firewatch/muster/internal/repositories/session"
	"github.com/firewatch/muster/internal/services/muster"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

// ClientTestSuite wires two marshal clients against one miniredis store
// and checks that writes converge through the change feed
type ClientTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	service muster.Service
	ctx     context.Context

	avery *Client
	blake *Client
}

func (s *ClientTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})
	s.ctx = context.Background()

	feed, err := changefeed.NewPublisher(&changefeed.PublisherConfig{
		RedisClient: s.client,
	})
	s.Require().NoError(err)

	sessions, err := sessionRepo.NewRedis(&sessionRepo.Config{RedisClient: s.client, Feed: feed})
	s.Require().NoError(err)
	attendance, err := attendanceRepo.NewRedis(&attendanceRepo.Config{RedisClient: s.client, Feed: feed})
	s.Require().NoError(err)
	marshals, err := marshalRepo.NewRedis(&marshalRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)
	employees, err := employeeRepo.NewRedis(&employeeRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)

	service, err := muster.New(&muster.Config{
		SessionRepo:    sessions,
		AttendanceRepo: attendance,
		MarshalRepo:    marshals,
		EmployeeRepo:   employees,
		Clock:          &clock.DefaultClock{},
		UUID:           uuid.New(),
	})
	s.Require().NoError(err)
	s.service = service

	s.avery = s.newClient("Avery")
	s.blake = s.newClient("Blake")
}

func (s *ClientTestSuite) TearDownTest() {
	s.Require().NoError(s.avery.Close())
	s.Require().NoError(s.blake.Close())
	s.client.Close()
	s.mr.Close()
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) newClient(name string) *Client {
	c, err := New(s.ctx, &Config{
		Service:     s.service,
		RedisClient: s.client,
		Marshal:     &models.Marshal{ID: name, Name: name},
		Logger:      zerolog.Nop(),
	})
	s.Require().NoError(err)
	return c
}

// eventually polls the condition until feed delivery catches up
func (s *ClientTestSuite) eventually(condition func() bool, msg string) {
	s.Require().Eventually(condition, 2*time.Second, 10*time.Millisecond, msg)
}

func (s *ClientTestSuite) TestStartDrillSurfacesOnOtherSetupViews() {
	session, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)

	s.eventually(func() bool {
		snapshot := s.blake.Snapshot()
		return len(snapshot.ActiveSessions) == 1 && snapshot.ActiveSessions[0].ID == session.ID
	}, "Blake never saw Avery's drill")
}

func (s *ClientTestSuite) TestAttendanceConvergesAcrossClients() {
	session, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.blake.Join(s.ctx, session))

	s.Require().NoError(s.avery.SetStatus(s.ctx, "emp-1", models.StatusMissing))

	// Avery sees their own write immediately
	s.Equal(models.StatusMissing, s.avery.Snapshot().Attendance["emp-1"].Status)

	// Blake converges through the feed
	s.eventually(func() bool {
		record := s.blake.Snapshot().Attendance["emp-1"]
		return record != nil && record.Status == models.StatusMissing && record.MarshalName == "Avery"
	}, "Blake never converged on Avery's write")
}

func (s *ClientTestSuite) TestNotePreservedAcrossWriters() {
	session, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.blake.Join(s.ctx, session))

	s.Require().NoError(s.avery.SetStatus(s.ctx, "emp-1", models.StatusPresent))
	s.Require().NoError(s.avery.SetNote(s.ctx, "emp-1", "lunch"))

	// Wait for Blake's view to carry the note before he writes
	s.eventually(func() bool {
		record := s.blake.Snapshot().Attendance["emp-1"]
		return record != nil && record.Note == "lunch"
	}, "Blake never saw the note")

	s.Require().NoError(s.blake.SetStatus(s.ctx, "emp-1", models.StatusMissing))

	s.eventually(func() bool {
		record := s.avery.Snapshot().Attendance["emp-1"]
		return record != nil && record.Status == models.StatusMissing && record.Note == "lunch"
	}, "Avery never saw Blake's status change with the note intact")
}

func (s *ClientTestSuite) TestCycleStatusWalksRotation() {
	_, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)

	expected := []models.Status{
		models.StatusPresent,
		models.StatusMissing,
		models.StatusExcused,
		models.StatusUnaccounted,
	}

	for _, want := range expected {
		s.Require().NoError(s.avery.CycleStatus(s.ctx, "emp-1"))
		// The feed replays Avery's own write; wait out the echo so a
		// stale event cannot shadow the next step's assertion
		s.eventually(func() bool {
			return s.avery.Snapshot().Attendance["emp-1"].Status == want
		}, "status never settled on "+string(want))
	}
}

func (s *ClientTestSuite) TestStopDrillPropagates() {
	session, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)

	s.eventually(func() bool {
		return len(s.blake.Snapshot().ActiveSessions) == 1
	}, "Blake never saw the drill start")

	stopped, err := s.avery.StopDrill(s.ctx)
	s.Require().NoError(err)
	s.False(stopped.Active)
	s.Require().NotNil(stopped.EndedAt)
	s.Equal(session.ID, stopped.ID)

	// The ended drill leaves Blake's active set
	s.eventually(func() bool {
		return len(s.blake.Snapshot().ActiveSessions) == 0
	}, "Blake never saw the drill end")
}

func (s *ClientTestSuite) TestIndependentSessionsDoNotLeak() {
	drill1, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)

	drill2, err := s.blake.StartDrill(s.ctx)
	s.Require().NoError(err)
	s.NotEqual(drill1.ID, drill2.ID)

	s.Require().NoError(s.avery.SetStatus(s.ctx, "emp-1", models.StatusMissing))

	// Blake, joined to his own drill, never sees Avery's write
	time.Sleep(100 * time.Millisecond)
	s.Empty(s.blake.Snapshot().Attendance)

	// Stopping drill1 leaves drill2 running
	_, err = s.avery.StopDrill(s.ctx)
	s.Require().NoError(err)

	current, err := s.service.GetSession(s.ctx, &muster.GetSessionInput{SessionID: drill2.ID})
	s.Require().NoError(err)
	s.True(current.Session.Active)
}

func (s *ClientTestSuite) TestSwitchDiscardsOldView() {
	drill1, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.avery.SetStatus(s.ctx, "emp-1", models.StatusPresent))

	drill2, err := s.blake.StartDrill(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.avery.Switch(s.ctx, drill2))

	snapshot := s.avery.Snapshot()
	s.Equal(drill2.ID, snapshot.Session.ID)
	s.Empty(snapshot.Attendance)

	// The abandoned session kept its records
	records, err := s.service.LoadAttendance(s.ctx, &muster.LoadAttendanceInput{SessionID: drill1.ID})
	s.Require().NoError(err)
	s.Len(records.Records, 1)
}

func (s *ClientTestSuite) TestResyncReloadsAfterMissedEvents() {
	session, err := s.avery.StartDrill(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.blake.Join(s.ctx, session))

	// Write through the service directly, as if Blake's subscription
	// had been disconnected while the write happened
	_, err = s.service.SetStatus(s.ctx, &muster.SetStatusInput{
		SessionID:  session.ID,
		EmployeeID: "emp-9",
		Writer:     "Avery",
		Status:     models.StatusExcused,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.blake.Resync(s.ctx))

	record := s.blake.Snapshot().Attendance["emp-9"]
	s.Require().NotNil(record)
	s.Equal(models.StatusExcused, record.Status)
}
