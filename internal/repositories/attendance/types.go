package attendance

import "github.com/firewatch/muster/internal/models"

// UpsertRecordInput contains parameters for writing a ledger record
type UpsertRecordInput struct {
	Record *models.AttendanceRecord
}

// GetRecordInput contains parameters for retrieving one record
type GetRecordInput struct {
	SessionID  string
	EmployeeID string
}

// ListBySessionInput contains parameters for listing a session's records
type ListBySessionInput struct {
	SessionID string
}

// ListBySessionOutput contains the result of listing a session's records
type ListBySessionOutput struct {
	Records []*models.AttendanceRecord
}

// DeleteBySessionInput contains parameters for the session cascade delete
type DeleteBySessionInput struct {
	SessionID string
}
