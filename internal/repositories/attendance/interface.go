package attendance

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/firewatch/muster/internal/repositories/attendance Repository

import (
	"context"

	"github.com/firewatch/muster/internal/models"
)

// Repository defines the interface for the attendance ledger. The store
// enforces at most one record per (session, employee) pair; upserts
// rewrite the full row. Writes emit change-feed notifications after
// they commit.
type Repository interface {
	// UpsertRecord creates or overwrites the record for the input's
	// (session, employee) pair
	UpsertRecord(ctx context.Context, input *UpsertRecordInput) error

	// GetRecord retrieves one record by (session, employee) pair
	GetRecord(ctx context.Context, input *GetRecordInput) (*models.AttendanceRecord, error)

	// ListBySession retrieves all records for a session
	ListBySession(ctx context.Context, input *ListBySessionInput) (*ListBySessionOutput, error)

	// DeleteBySession removes every record for a session. There is no
	// standalone single-record delete.
	DeleteBySession(ctx context.Context, input *DeleteBySessionInput) error
}
