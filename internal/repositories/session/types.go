package session

import "github.com/firewatch/muster/internal/models"

// CreateSessionInput contains parameters for persisting a new session
type CreateSessionInput struct {
	Session *models.DrillSession
}

// UpdateSessionInput contains parameters for rewriting a session
type UpdateSessionInput struct {
	Session *models.DrillSession
}

// GetSessionInput contains parameters for retrieving a session
type GetSessionInput struct {
	SessionID string
}

// ListSessionsInput contains parameters for listing sessions
type ListSessionsInput struct {
	// Limit bounds the page size; zero or negative means DefaultListLimit
	Limit int
}

// ListSessionsOutput contains the result of listing sessions
type ListSessionsOutput struct {
	Sessions []*models.DrillSession
}

// ListActiveSessionsInput contains parameters for listing active sessions
type ListActiveSessionsInput struct{}

// ListActiveSessionsOutput contains the result of listing active sessions
type ListActiveSessionsOutput struct {
	Sessions []*models.DrillSession
}

// DeleteSessionInput contains parameters for deleting a session
type DeleteSessionInput struct {
	SessionID string
}
