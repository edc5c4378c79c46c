package session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/firewatch/muster/internal/repositories/session Repository

import (
	"context"

	"github.com/firewatch/muster/internal/models"
)

// Repository defines the interface for drill session persistence.
// Writes emit change-feed notifications after they commit.
type Repository interface {
	// CreateSession persists a new session
	CreateSession(ctx context.Context, input *CreateSessionInput) error

	// UpdateSession rewrites an existing session
	UpdateSession(ctx context.Context, input *UpdateSessionInput) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.DrillSession, error)

	// ListSessions retrieves sessions newest first, bounded by Limit
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// ListActiveSessions retrieves all active sessions newest first
	ListActiveSessions(ctx context.Context, input *ListActiveSessionsInput) (*ListActiveSessionsOutput, error)

	// DeleteSession removes a session. Attendance cascade is handled
	// by the caller against the attendance repository.
	DeleteSession(ctx context.Context, input *DeleteSessionInput) error
}
