package muster

import (
	"github.com/firewatch/muster/internal/common/clock"
	"github.com/firewatch/muster/internal/common/uuid"
	"github.com/firewatch/muster/internal/models"
	attendanceRepo "github.com/firewatch/muster/internal/repositories/attendance"
	employeeRepo "github.com/firewatch/muster/internal/repositories/employee"
	marshalRepo "github.com/firewatch/muster/internal/repositories/marshal"
	sessionRepo "github.com/firewatch/muster/internal/repositories/session"
)

// Config holds configuration and dependencies for the muster service
type Config struct {
	// SessionRepo persists drill sessions
	SessionRepo sessionRepo.Repository

	// AttendanceRepo persists the attendance ledger
	AttendanceRepo attendanceRepo.Repository

	// MarshalRepo persists marshals
	MarshalRepo marshalRepo.Repository

	// EmployeeRepo persists employees
	EmployeeRepo employeeRepo.Repository

	// Clock provides the current time, injectable for tests
	Clock clock.Clock

	// UUID generates identifiers, injectable for tests
	UUID uuid.UUID

	// SessionPageSize bounds session listings; zero means the
	// repository default
	SessionPageSize int
}

// StartDrillInput contains parameters for starting a drill
type StartDrillInput struct {
	// Initiator is the name of the marshal starting the drill
	Initiator string
}

// StartDrillOutput contains the result of starting a drill
type StartDrillOutput struct {
	Session *models.DrillSession
}

// StopDrillInput contains parameters for stopping a drill
type StopDrillInput struct {
	SessionID string

	// EndedBy is the name of the marshal stopping the drill
	EndedBy string
}

// StopDrillOutput contains the result of stopping a drill
type StopDrillOutput struct {
	Session *models.DrillSession
}

// DeleteSessionInput contains parameters for deleting a session
type DeleteSessionInput struct {
	SessionID string
}

// GetSessionInput contains parameters for retrieving a session
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput contains the result of retrieving a session
type GetSessionOutput struct {
	Session *models.DrillSession
}

// ListSessionsInput contains parameters for listing sessions
type ListSessionsInput struct{}

// ListSessionsOutput contains the result of listing sessions, newest first
type ListSessionsOutput struct {
	Sessions []*models.DrillSession
}

// ListActiveSessionsInput contains parameters for listing active sessions
type ListActiveSessionsInput struct{}

// ListActiveSessionsOutput contains the active sessions, newest first
type ListActiveSessionsOutput struct {
	Sessions []*models.DrillSession
}

// AttendanceUpdate is a partial update to a ledger record. Nil fields
// are filled from the caller's known local value, or defaulted when no
// value is known.
type AttendanceUpdate struct {
	Status *models.Status
	Note   *string
}

// UpsertAttendanceInput contains parameters for writing a ledger record
type UpsertAttendanceInput struct {
	SessionID  string
	EmployeeID string

	// Writer is the name of the marshal making the change
	Writer string

	// Update holds the fields being changed
	Update AttendanceUpdate

	// Known is the caller's current local record for the pair, nil
	// when none is known. Merge reads this value, not the store, so
	// two writers inside the propagation window race last-write-wins.
	Known *models.AttendanceRecord
}

// UpsertAttendanceOutput contains the stored record after the write
type UpsertAttendanceOutput struct {
	Record *models.AttendanceRecord
}

// CycleStatusInput contains parameters for the quick-tap status cycle
type CycleStatusInput struct {
	SessionID  string
	EmployeeID string
	Writer     string
	Known      *models.AttendanceRecord
}

// CycleStatusOutput contains the stored record after the cycle
type CycleStatusOutput struct {
	Record *models.AttendanceRecord
}

// SetStatusInput contains parameters for jumping straight to a status
type SetStatusInput struct {
	SessionID  string
	EmployeeID string
	Writer     string
	Status     models.Status
	Known      *models.AttendanceRecord
}

// SetStatusOutput contains the stored record after the write
type SetStatusOutput struct {
	Record *models.AttendanceRecord
}

// LoadAttendanceInput contains parameters for loading a session snapshot
type LoadAttendanceInput struct {
	SessionID string
}

// LoadAttendanceOutput contains a session's records keyed by employee ID
type LoadAttendanceOutput struct {
	Records map[string]*models.AttendanceRecord
}

// AddMarshalInput contains parameters for registering a marshal
type AddMarshalInput struct {
	Name string
}

// AddMarshalOutput contains the created marshal
type AddMarshalOutput struct {
	Marshal *models.Marshal
}

// ListMarshalsInput contains parameters for listing marshals
type ListMarshalsInput struct{}

// ListMarshalsOutput contains all marshals ordered by name
type ListMarshalsOutput struct {
	Marshals []*models.Marshal
}

// RemoveMarshalInput contains parameters for deleting a marshal
type RemoveMarshalInput struct {
	MarshalID string
}

// AddEmployeeInput contains parameters for registering an employee
type AddEmployeeInput struct {
	Name string

	// Dept is optional
	Dept string

	// MarshalID assigns the employee to a marshal's party, optional
	MarshalID string
}

// AddEmployeeOutput contains the created employee
type AddEmployeeOutput struct {
	Employee *models.Employee
}

// ListEmployeesInput contains parameters for listing employees
type ListEmployeesInput struct {
	// MarshalID restricts the listing to one marshal's party when set
	MarshalID string
}

// ListEmployeesOutput contains employees ordered by name
type ListEmployeesOutput struct {
	Employees []*models.Employee
}

// RemoveEmployeeInput contains parameters for deleting an employee
type RemoveEmployeeInput struct {
	EmployeeID string
}
