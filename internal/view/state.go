// Package view holds one marshal's local picture of the shared state:
// the joined session, its attendance map, and the session lists shown
// on the setup screen. The merge rules are pure functions over this
// container so they can be tested without any transport.
package view

import (
	"github.com/firewatch/muster/internal/changefeed"
	"github.com/firewatch/muster/internal/models"
)

// State is a marshal's reconciled local view
type State struct {
	// Session is the currently joined session, nil on the setup screen
	Session *models.DrillSession `json:"session"`

	// Attendance is the joined session's ledger keyed by employee ID
	Attendance map[string]*models.AttendanceRecord `json:"attendance"`

	// Sessions is the recent session list, newest first
	Sessions []*models.DrillSession `json:"sessions"`

	// ActiveSessions is the set of live sessions, newest first
	ActiveSessions []*models.DrillSession `json:"active_sessions"`
}

// New returns an empty view state
func New() *State {
	return &State{
		Attendance: make(map[string]*models.AttendanceRecord),
	}
}

// Apply folds one change notification into the state
func (s *State) Apply(msg *changefeed.Message) {
	if msg == nil {
		return
	}

	switch msg.Table {
	case changefeed.TableAttendance:
		s.applyAttendance(msg)
	case changefeed.TableSessions:
		s.applySession(msg)
	}
}

// ApplyOwnUpsert applies the result of the client's own write
// immediately, ahead of its feed notification. The later feed delivery
// of the same record is an idempotent re-apply.
func (s *State) ApplyOwnUpsert(record *models.AttendanceRecord) {
	if record == nil || s.Session == nil || record.SessionID != s.Session.ID {
		return
	}
	s.Attendance[record.EmployeeID] = record
}

// applyAttendance merges an incoming record, unconditionally
// overwriting the local entry. Last-writer-wins at the view layer
// mirrors the ledger's store-side policy. Deletions only happen as
// part of a session cascade, so delete notifications are ignored.
func (s *State) applyAttendance(msg *changefeed.Message) {
	if msg.Kind == changefeed.KindDelete || msg.Attendance == nil {
		return
	}

	if s.Session == nil || msg.Attendance.SessionID != s.Session.ID {
		return
	}

	s.Attendance[msg.Attendance.EmployeeID] = msg.Attendance
}

func (s *State) applySession(msg *changefeed.Message) {
	if msg.Session == nil {
		return
	}

	switch msg.Kind {
	case changefeed.KindInsert:
		s.applySessionCreated(msg.Session)
	case changefeed.KindUpdate:
		s.applySessionUpdated(msg.Session)
	case changefeed.KindDelete:
		s.applySessionDeleted(msg.Session)
	}
}

// applySessionCreated surfaces a drill started by another marshal. New
// sessions are prepended so both lists stay newest first.
func (s *State) applySessionCreated(session *models.DrillSession) {
	if !session.Active {
		return
	}

	if findSession(s.ActiveSessions, session.ID) < 0 {
		s.ActiveSessions = prepend(s.ActiveSessions, session)
	}

	if findSession(s.Sessions, session.ID) < 0 {
		s.Sessions = prepend(s.Sessions, session)
	}
}

// applySessionUpdated replaces the local session object. A session
// going inactive leaves the active set; the full list keeps it with
// its updated fields.
func (s *State) applySessionUpdated(session *models.DrillSession) {
	if s.Session != nil && s.Session.ID == session.ID {
		s.Session = session
	}

	if i := findSession(s.Sessions, session.ID); i >= 0 {
		s.Sessions[i] = session
	}

	if session.Active {
		if i := findSession(s.ActiveSessions, session.ID); i >= 0 {
			s.ActiveSessions[i] = session
		}
		return
	}

	s.ActiveSessions = removeSession(s.ActiveSessions, session.ID)
}

func (s *State) applySessionDeleted(session *models.DrillSession) {
	s.Sessions = removeSession(s.Sessions, session.ID)
	s.ActiveSessions = removeSession(s.ActiveSessions, session.ID)

	if s.Session != nil && s.Session.ID == session.ID {
		s.Session = nil
		s.Attendance = make(map[string]*models.AttendanceRecord)
	}
}

// Join points the view at a session with a freshly loaded snapshot,
// discarding whatever was shown before
func (s *State) Join(session *models.DrillSession, snapshot map[string]*models.AttendanceRecord) {
	s.Session = session
	s.Attendance = snapshot
	if s.Attendance == nil {
		s.Attendance = make(map[string]*models.AttendanceRecord)
	}
}

// Leave returns the view to the setup screen
func (s *State) Leave() {
	s.Session = nil
	s.Attendance = make(map[string]*models.AttendanceRecord)
}

// Clone returns a deep enough copy for renderers to read while the
// reconciliation loop keeps writing
func (s *State) Clone() *State {
	clone := &State{
		Session:        s.Session,
		Attendance:     make(map[string]*models.AttendanceRecord, len(s.Attendance)),
		Sessions:       make([]*models.DrillSession, len(s.Sessions)),
		ActiveSessions: make([]*models.DrillSession, len(s.ActiveSessions)),
	}

	for employeeID, record := range s.Attendance {
		clone.Attendance[employeeID] = record
	}
	copy(clone.Sessions, s.Sessions)
	copy(clone.ActiveSessions, s.ActiveSessions)

	return clone
}

func findSession(sessions []*models.DrillSession, id string) int {
	for i, session := range sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}

func removeSession(sessions []*models.DrillSession, id string) []*models.DrillSession {
	filtered := sessions[:0]
	for _, session := range sessions {
		if session.ID != id {
			filtered = append(filtered, session)
		}
	}
	return filtered
}

func prepend(sessions []*models.DrillSession, session *models.DrillSession) []*models.DrillSession {
	return append([]*models.DrillSession{session}, sessions...)
}
