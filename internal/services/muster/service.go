package muster

import (
	"context"
	"errors"

	"github.com/firewatch/muster/internal/models"
	attendanceRepo "github.com/firewatch/muster/internal/repositories/attendance"
	sessionRepo "github.com/firewatch/muster/internal/repositories/session"
)

// service implements the Service interface
type service struct {
	config *Config
}

// New creates a new muster service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.AttendanceRepo == nil {
		return nil, ErrNilAttendanceRepo
	}

	if cfg.MarshalRepo == nil {
		return nil, ErrNilMarshalRepo
	}

	if cfg.EmployeeRepo == nil {
		return nil, ErrNilEmployeeRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUID == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		config: cfg,
	}, nil
}

// StartDrill creates a new session in the active state. Starting a
// drill never deactivates sibling sessions: independent drills (other
// floors, other buildings) run concurrently.
func (s *service) StartDrill(ctx context.Context, input *StartDrillInput) (*StartDrillOutput, error) {
	if input == nil || input.Initiator == "" {
		return nil, ErrEmptyInitiator
	}

	session := &models.DrillSession{
		ID:        s.config.UUID.NewUUID(),
		StartedBy: input.Initiator,
		StartedAt: s.config.Clock.Now(),
		Active:    true,
	}

	err := s.config.SessionRepo.CreateSession(ctx, &sessionRepo.CreateSessionInput{
		Session: session,
	})
	if err != nil {
		return nil, err
	}

	return &StartDrillOutput{
		Session: session,
	}, nil
}

// StopDrill transitions one session from active to ended. The
// transition is terminal; a stopped session never reactivates.
func (s *service) StopDrill(ctx context.Context, input *StopDrillInput) (*StopDrillOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if !session.Active {
		return nil, ErrSessionEnded
	}

	endedAt := s.config.Clock.Now()
	session.Active = false
	session.EndedAt = &endedAt
	session.EndedBy = input.EndedBy

	err = s.config.SessionRepo.UpdateSession(ctx, &sessionRepo.UpdateSessionInput{
		Session: session,
	})
	if err != nil {
		return nil, err
	}

	return &StopDrillOutput{
		Session: session,
	}, nil
}

// DeleteSession removes a session and all of its attendance records.
// Works on active and ended sessions alike; irreversible.
func (s *service) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return ErrSessionNotFound
	}

	err := s.config.AttendanceRepo.DeleteBySession(ctx, &attendanceRepo.DeleteBySessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		return err
	}

	err = s.config.SessionRepo.DeleteSession(ctx, &sessionRepo.DeleteSessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *service) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	return &GetSessionOutput{
		Session: session,
	}, nil
}

// ListSessions retrieves recent sessions, newest first, bounded by the
// configured page size
func (s *service) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	output, err := s.config.SessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{
		Limit: s.config.SessionPageSize,
	})
	if err != nil {
		return nil, err
	}

	return &ListSessionsOutput{
		Sessions: output.Sessions,
	}, nil
}

// ListActiveSessions retrieves all currently active sessions
func (s *service) ListActiveSessions(ctx context.Context, input *ListActiveSessionsInput) (*ListActiveSessionsOutput, error) {
	output, err := s.config.SessionRepo.ListActiveSessions(ctx, &sessionRepo.ListActiveSessionsInput{})
	if err != nil {
		return nil, err
	}

	return &ListActiveSessionsOutput{
		Sessions: output.Sessions,
	}, nil
}

// UpsertAttendance writes the full ledger row for a (session, employee)
// pair. Fields absent from the update are taken from the caller's known
// local value, falling back to defaults, so a status-only update keeps
// the existing note. There is deliberately no version check: the second
// of two competing writers clobbers the first, note included.
func (s *service) UpsertAttendance(ctx context.Context, input *UpsertAttendanceInput) (*UpsertAttendanceOutput, error) {
	if input == nil || input.SessionID == "" || input.EmployeeID == "" {
		return nil, ErrSessionNotFound
	}

	if input.Writer == "" {
		return nil, ErrEmptyWriter
	}

	if input.Update.Status != nil && !input.Update.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	// The write is rejected when the session no longer exists, so a
	// deleted session cannot re-accumulate orphan records.
	if _, err := s.getSession(ctx, input.SessionID); err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		SessionID:   input.SessionID,
		EmployeeID:  input.EmployeeID,
		Status:      models.StatusUnaccounted,
		MarshalName: input.Writer,
		UpdatedAt:   s.config.Clock.Now(),
	}

	if input.Known != nil {
		record.Status = input.Known.Status
		record.Note = input.Known.Note
	}

	if input.Update.Status != nil {
		record.Status = *input.Update.Status
	}

	if input.Update.Note != nil {
		record.Note = *input.Update.Note
	}

	err := s.config.AttendanceRepo.UpsertRecord(ctx, &attendanceRepo.UpsertRecordInput{
		Record: record,
	})
	if err != nil {
		return nil, err
	}

	return &UpsertAttendanceOutput{
		Record: record,
	}, nil
}

// CycleStatus advances the record through the fixed rotation:
// unaccounted, present, missing, excused, back to unaccounted.
func (s *service) CycleStatus(ctx context.Context, input *CycleStatusInput) (*CycleStatusOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	next := models.EffectiveStatus(input.Known).Next()

	output, err := s.UpsertAttendance(ctx, &UpsertAttendanceInput{
		SessionID:  input.SessionID,
		EmployeeID: input.EmployeeID,
		Writer:     input.Writer,
		Update:     AttendanceUpdate{Status: &next},
		Known:      input.Known,
	})
	if err != nil {
		return nil, err
	}

	return &CycleStatusOutput{
		Record: output.Record,
	}, nil
}

// SetStatus jumps the record straight to a target status, bypassing
// the cycle
func (s *service) SetStatus(ctx context.Context, input *SetStatusInput) (*SetStatusOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	output, err := s.UpsertAttendance(ctx, &UpsertAttendanceInput{
		SessionID:  input.SessionID,
		EmployeeID: input.EmployeeID,
		Writer:     input.Writer,
		Update:     AttendanceUpdate{Status: &input.Status},
		Known:      input.Known,
	})
	if err != nil {
		return nil, err
	}

	return &SetStatusOutput{
		Record: output.Record,
	}, nil
}

// LoadAttendance returns the full ledger snapshot for a session keyed
// by employee ID. An empty map is a valid state, not an error.
func (s *service) LoadAttendance(ctx context.Context, input *LoadAttendanceInput) (*LoadAttendanceOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrSessionNotFound
	}

	output, err := s.config.AttendanceRepo.ListBySession(ctx, &attendanceRepo.ListBySessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, err
	}

	records := make(map[string]*models.AttendanceRecord, len(output.Records))
	for _, record := range output.Records {
		records[record.EmployeeID] = record
	}

	return &LoadAttendanceOutput{
		Records: records,
	}, nil
}

func (s *service) getSession(ctx context.Context, sessionID string) (*models.DrillSession, error) {
	session, err := s.config.SessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: sessionID,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return session, nil
}
