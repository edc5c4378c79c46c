package changefeed

import (
	"encoding/json"
	"fmt"

	"github.com/firewatch/muster/internal/models"
)

// Kind is the type of change a notification describes
type Kind string

const (
	// KindInsert indicates a row was created
	KindInsert Kind = "insert"

	// KindUpdate indicates an existing row was rewritten
	KindUpdate Kind = "update"

	// KindDelete indicates a row was removed
	KindDelete Kind = "delete"
)

// Table identifies which entity a notification is about
type Table string

const (
	// TableAttendance carries AttendanceRecord rows
	TableAttendance Table = "attendance"

	// TableSessions carries DrillSession rows
	TableSessions Table = "drill_sessions"
)

const (
	// sessionsChannel carries every DrillSession insert and update
	sessionsChannel = "muster:feed:sessions"

	// attendanceChannelPrefix scopes attendance notifications per session
	attendanceChannelPrefix = "muster:feed:attendance:"
)

// envelope is the wire format of a single notification
type envelope struct {
	Kind  Kind            `json:"kind"`
	Table Table           `json:"table"`
	Row   json.RawMessage `json:"row"`
}

// Message is one decoded change notification. Exactly one of Attendance
// and Session is set, matching Table.
type Message struct {
	// Kind is the type of change
	Kind Kind

	// Table identifies the entity the change is about
	Table Table

	// Attendance is the new row value for attendance changes
	Attendance *models.AttendanceRecord

	// Session is the new row value for session changes
	Session *models.DrillSession
}

func decodeMessage(payload string) (*Message, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("failed to decode feed envelope: %w", err)
	}

	msg := &Message{
		Kind:  env.Kind,
		Table: env.Table,
	}

	switch env.Table {
	case TableAttendance:
		var record models.AttendanceRecord
		if err := json.Unmarshal(env.Row, &record); err != nil {
			return nil, fmt.Errorf("failed to decode attendance row: %w", err)
		}
		msg.Attendance = &record
	case TableSessions:
		var session models.DrillSession
		if err := json.Unmarshal(env.Row, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session row: %w", err)
		}
		msg.Session = &session
	default:
		return nil, fmt.Errorf("unknown feed table %q", env.Table)
	}

	return msg, nil
}
