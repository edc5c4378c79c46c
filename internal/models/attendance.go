package models

import (
	"time"
)

// Status represents an employee's headcount state within a drill session
type Status string

const (
	// StatusUnaccounted indicates the employee has not yet been accounted for.
	// This is the implicit state of any employee without an attendance record.
	StatusUnaccounted Status = "unaccounted"

	// StatusPresent indicates the employee was seen at the muster point
	StatusPresent Status = "present"

	// StatusMissing indicates the employee could not be located
	StatusMissing Status = "missing"

	// StatusExcused indicates the employee is known to be off-site
	StatusExcused Status = "excused"
)

// statusCycle is the fixed rotation used by the quick-tap shortcut
var statusCycle = map[Status]Status{
	StatusUnaccounted: StatusPresent,
	StatusPresent:     StatusMissing,
	StatusMissing:     StatusExcused,
	StatusExcused:     StatusUnaccounted,
}

// Next returns the status that follows s in the fixed cycle.
// Unknown values are treated as unaccounted.
func (s Status) Next() Status {
	if next, ok := statusCycle[s]; ok {
		return next
	}
	return StatusPresent
}

// Valid reports whether s is one of the four known statuses
func (s Status) Valid() bool {
	_, ok := statusCycle[s]
	return ok
}

// AttendanceRecord is the ledger entry for one employee in one session.
// At most one record exists per (session, employee) pair; the absence of
// a record means the employee is unaccounted.
type AttendanceRecord struct {
	// SessionID is the drill session this record belongs to
	SessionID string `json:"session_id"`

	// EmployeeID is the employee being accounted for
	EmployeeID string `json:"employee_id"`

	// Status is the employee's current headcount state
	Status Status `json:"status"`

	// Note is an optional free-text annotation, empty when unset
	Note string `json:"note"`

	// MarshalName is the name of the last marshal to write this record
	MarshalName string `json:"marshal_name"`

	// UpdatedAt is when the record was last written
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveStatus returns the status of a possibly-absent record
func EffectiveStatus(record *AttendanceRecord) Status {
	if record == nil {
		return StatusUnaccounted
	}
	return record.Status
}
