package muster

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/firewatch/muster/internal/services/muster Service

import "context"

// Service defines the interface for drill session lifecycle, the
// attendance ledger, and roster management
type Service interface {
	// StartDrill creates a new active session. Other active sessions
	// are left running.
	StartDrill(ctx context.Context, input *StartDrillInput) (*StartDrillOutput, error)

	// StopDrill ends one session; siblings are unaffected. Terminal.
	StopDrill(ctx context.Context, input *StopDrillInput) (*StopDrillOutput, error)

	// DeleteSession removes a session and cascades its attendance
	DeleteSession(ctx context.Context, input *DeleteSessionInput) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// ListSessions retrieves recent sessions, newest first
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// ListActiveSessions retrieves all currently active sessions
	ListActiveSessions(ctx context.Context, input *ListActiveSessionsInput) (*ListActiveSessionsOutput, error)

	// UpsertAttendance writes a ledger record, merging unspecified
	// fields from the caller's known value. Last writer wins.
	UpsertAttendance(ctx context.Context, input *UpsertAttendanceInput) (*UpsertAttendanceOutput, error)

	// CycleStatus advances a record through the fixed status rotation
	CycleStatus(ctx context.Context, input *CycleStatusInput) (*CycleStatusOutput, error)

	// SetStatus jumps a record straight to a target status
	SetStatus(ctx context.Context, input *SetStatusInput) (*SetStatusOutput, error)

	// LoadAttendance returns the full ledger snapshot for a session
	LoadAttendance(ctx context.Context, input *LoadAttendanceInput) (*LoadAttendanceOutput, error)

	// AddMarshal registers a marshal
	AddMarshal(ctx context.Context, input *AddMarshalInput) (*AddMarshalOutput, error)

	// ListMarshals retrieves all marshals ordered by name
	ListMarshals(ctx context.Context, input *ListMarshalsInput) (*ListMarshalsOutput, error)

	// RemoveMarshal deletes a marshal; assigned employees keep their
	// dangling reference
	RemoveMarshal(ctx context.Context, input *RemoveMarshalInput) error

	// AddEmployee registers an employee
	AddEmployee(ctx context.Context, input *AddEmployeeInput) (*AddEmployeeOutput, error)

	// ListEmployees retrieves employees, optionally one marshal's party
	ListEmployees(ctx context.Context, input *ListEmployeesInput) (*ListEmployeesOutput, error)

	// RemoveEmployee deletes an employee
	RemoveEmployee(ctx context.Context, input *RemoveEmployeeInput) error
}
