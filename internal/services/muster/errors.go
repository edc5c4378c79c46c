package muster

// MusterError is a custom error type for muster-related errors
type MusterError string

// Error implements the error interface
func (e MusterError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound    MusterError = "session not found"
	ErrSessionEnded       MusterError = "session has already ended"
	ErrMarshalNotFound    MusterError = "marshal not found"
	ErrEmployeeNotFound   MusterError = "employee not found"
	ErrEmptyName          MusterError = "name cannot be empty"
	ErrEmptyInitiator     MusterError = "initiator cannot be empty"
	ErrEmptyWriter        MusterError = "writer cannot be empty"
	ErrInvalidStatus      MusterError = "invalid attendance status"
	ErrNilConfig          MusterError = "config cannot be nil"
	ErrNilSessionRepo     MusterError = "session repository cannot be nil"
	ErrNilAttendanceRepo  MusterError = "attendance repository cannot be nil"
	ErrNilMarshalRepo     MusterError = "marshal repository cannot be nil"
	ErrNilEmployeeRepo    MusterError = "employee repository cannot be nil"
	ErrNilClock           MusterError = "clock cannot be nil"
	ErrNilUUIDGenerator   MusterError = "UUID generator cannot be nil"
)
