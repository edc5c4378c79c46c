package view

import (
	"testing"
	"time"

	"github.com/firewatch/muster/internal/changefeed"
	"github.com/firewatch/muster/internal/models"
	"github.com/stretchr/testify/suite"
)

type StateTestSuite struct {
	suite.Suite
	state   *State
	testNow time.Time
}

func (s *StateTestSuite) SetupTest() {
	s.state = New()
	s.testNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
}

func TestStateTestSuite(t *testing.T) {
	suite.Run(t, new(StateTestSuite))
}

func (s *StateTestSuite) session(id string, active bool) *models.DrillSession {
	return &models.DrillSession{
		ID:        id,
		StartedBy: "Avery",
		StartedAt: s.testNow,
		Active:    active,
	}
}

func (s *StateTestSuite) record(sessionID, employeeID string, status models.Status) *models.AttendanceRecord {
	return &models.AttendanceRecord{
		SessionID:  sessionID,
		EmployeeID: employeeID,
		Status:     status,
		UpdatedAt:  s.testNow,
	}
}

func (s *StateTestSuite) attendanceMsg(kind changefeed.Kind, record *models.AttendanceRecord) *changefeed.Message {
	return &changefeed.Message{
		Kind:       kind,
		Table:      changefeed.TableAttendance,
		Attendance: record,
	}
}

func (s *StateTestSuite) sessionMsg(kind changefeed.Kind, session *models.DrillSession) *changefeed.Message {
	return &changefeed.Message{
		Kind:    kind,
		Table:   changefeed.TableSessions,
		Session: session,
	}
}

func (s *StateTestSuite) TestAttendanceOverwritesLocalEntry() {
	s.state.Join(s.session("drill-1", true), map[string]*models.AttendanceRecord{
		"emp-1": s.record("drill-1", "emp-1", models.StatusPresent),
	})

	incoming := s.record("drill-1", "emp-1", models.StatusMissing)
	s.state.Apply(s.attendanceMsg(changefeed.KindUpdate, incoming))

	s.Equal(models.StatusMissing, s.state.Attendance["emp-1"].Status)
}

func (s *StateTestSuite) TestAttendanceIgnoredForOtherSession() {
	s.state.Join(s.session("drill-1", true), nil)

	s.state.Apply(s.attendanceMsg(changefeed.KindInsert, s.record("drill-2", "emp-1", models.StatusPresent)))

	s.Empty(s.state.Attendance)
}

func (s *StateTestSuite) TestAttendanceIgnoredOnSetupScreen() {
	s.state.Apply(s.attendanceMsg(changefeed.KindInsert, s.record("drill-1", "emp-1", models.StatusPresent)))

	s.Empty(s.state.Attendance)
}

func (s *StateTestSuite) TestAttendanceDeleteIgnored() {
	s.state.Join(s.session("drill-1", true), map[string]*models.AttendanceRecord{
		"emp-1": s.record("drill-1", "emp-1", models.StatusPresent),
	})

	s.state.Apply(s.attendanceMsg(changefeed.KindDelete, s.record("drill-1", "emp-1", models.StatusPresent)))

	s.Require().Contains(s.state.Attendance, "emp-1")
	s.Equal(models.StatusPresent, s.state.Attendance["emp-1"].Status)
}

func (s *StateTestSuite) TestOwnUpsertThenFeedReplayIsIdempotent() {
	s.state.Join(s.session("drill-1", true), nil)

	record := s.record("drill-1", "emp-1", models.StatusExcused)
	s.state.ApplyOwnUpsert(record)
	s.Equal(models.StatusExcused, s.state.Attendance["emp-1"].Status)

	// The feed delivery of the same write changes nothing
	s.state.Apply(s.attendanceMsg(changefeed.KindUpdate, record))
	s.Len(s.state.Attendance, 1)
	s.Equal(models.StatusExcused, s.state.Attendance["emp-1"].Status)
}

func (s *StateTestSuite) TestSessionCreatedPrependsToBothLists() {
	s.state.Sessions = []*models.DrillSession{s.session("old", true)}
	s.state.ActiveSessions = []*models.DrillSession{s.session("old", true)}

	s.state.Apply(s.sessionMsg(changefeed.KindInsert, s.session("new", true)))

	s.Require().Len(s.state.Sessions, 2)
	s.Equal("new", s.state.Sessions[0].ID)
	s.Require().Len(s.state.ActiveSessions, 2)
	s.Equal("new", s.state.ActiveSessions[0].ID)
}

func (s *StateTestSuite) TestSessionCreatedDeduplicates() {
	known := s.session("drill-1", true)
	s.state.Sessions = []*models.DrillSession{known}
	s.state.ActiveSessions = []*models.DrillSession{known}

	s.state.Apply(s.sessionMsg(changefeed.KindInsert, s.session("drill-1", true)))

	s.Len(s.state.Sessions, 1)
	s.Len(s.state.ActiveSessions, 1)
}

func (s *StateTestSuite) TestSessionCreatedInactiveIgnored() {
	s.state.Apply(s.sessionMsg(changefeed.KindInsert, s.session("drill-1", false)))

	s.Empty(s.state.Sessions)
	s.Empty(s.state.ActiveSessions)
}

func (s *StateTestSuite) TestSessionUpdateReplacesJoinedSession() {
	joined := s.session("drill-1", true)
	s.state.Join(joined, nil)
	s.state.Sessions = []*models.DrillSession{joined}
	s.state.ActiveSessions = []*models.DrillSession{joined}

	endedAt := s.testNow.Add(15 * time.Minute)
	ended := s.session("drill-1", false)
	ended.EndedAt = &endedAt
	ended.EndedBy = "Blake"

	s.state.Apply(s.sessionMsg(changefeed.KindUpdate, ended))

	s.Require().NotNil(s.state.Session)
	s.False(s.state.Session.Active)
	s.Equal("Blake", s.state.Session.EndedBy)

	// Gone from the active set, still in the full list with new fields
	s.Empty(s.state.ActiveSessions)
	s.Require().Len(s.state.Sessions, 1)
	s.False(s.state.Sessions[0].Active)
}

func (s *StateTestSuite) TestSessionUpdateForOtherSessionKeepsJoined() {
	joined := s.session("drill-1", true)
	other := s.session("drill-2", true)
	s.state.Join(joined, nil)
	s.state.ActiveSessions = []*models.DrillSession{other, joined}

	otherEnded := s.session("drill-2", false)
	s.state.Apply(s.sessionMsg(changefeed.KindUpdate, otherEnded))

	s.Equal("drill-1", s.state.Session.ID)
	s.True(s.state.Session.Active)
	s.Require().Len(s.state.ActiveSessions, 1)
	s.Equal("drill-1", s.state.ActiveSessions[0].ID)
}

func (s *StateTestSuite) TestSessionDeleteClearsJoinedView() {
	joined := s.session("drill-1", true)
	s.state.Join(joined, map[string]*models.AttendanceRecord{
		"emp-1": s.record("drill-1", "emp-1", models.StatusPresent),
	})
	s.state.Sessions = []*models.DrillSession{joined}
	s.state.ActiveSessions = []*models.DrillSession{joined}

	s.state.Apply(s.sessionMsg(changefeed.KindDelete, joined))

	s.Nil(s.state.Session)
	s.Empty(s.state.Attendance)
	s.Empty(s.state.Sessions)
	s.Empty(s.state.ActiveSessions)
}

func (s *StateTestSuite) TestJoinDiscardsPreviousView() {
	s.state.Join(s.session("drill-1", true), map[string]*models.AttendanceRecord{
		"emp-1": s.record("drill-1", "emp-1", models.StatusMissing),
	})

	s.state.Join(s.session("drill-2", true), nil)

	s.Equal("drill-2", s.state.Session.ID)
	s.Empty(s.state.Attendance)
}

func (s *StateTestSuite) TestCloneIsolatesRenderers() {
	s.state.Join(s.session("drill-1", true), map[string]*models.AttendanceRecord{
		"emp-1": s.record("drill-1", "emp-1", models.StatusPresent),
	})
	s.state.Sessions = []*models.DrillSession{s.session("drill-1", true)}

	clone := s.state.Clone()

	s.state.Apply(s.attendanceMsg(changefeed.KindUpdate, s.record("drill-1", "emp-1", models.StatusMissing)))
	s.state.Apply(s.sessionMsg(changefeed.KindInsert, s.session("drill-2", true)))

	s.Equal(models.StatusPresent, clone.Attendance["emp-1"].Status)
	s.Len(clone.Sessions, 1)
}
