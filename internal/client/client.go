// Package client drives one marshal's connection to the shared state:
// joining and switching sessions, applying the marshal's own writes
// optimistically, and folding change-feed notifications into the local
// view on a single reconciliation goroutine.
package client

import (
	"context"
	"errors"
	"sync"

	"github.com/firewatch/muster/internal/changefeed"
	"github.com/firewatch/muster/internal/models"
	"github.com/firewatch/muster/internal/services/muster"
	"github.com/firewatch/muster/internal/view"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds configuration for a marshal client
type Config struct {
	// Service executes store operations
	Service muster.Service

	// RedisClient backs the change-feed subscription
	RedisClient *redis.Client

	// Marshal is the identity all writes are attributed to
	Marshal *models.Marshal

	// Logger for feed lifecycle events
	Logger zerolog.Logger
}

// Client is one marshal's live view of the muster state
type Client struct {
	service muster.Service
	redis   *redis.Client
	marshal *models.Marshal
	logger  zerolog.Logger

	mu         sync.Mutex
	state      *view.State
	subscriber *changefeed.Subscriber
	done       chan struct{}
}

// New creates a client showing the setup view
func New(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Service == nil {
		return nil, errors.New("service cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if cfg.Marshal == nil {
		return nil, errors.New("marshal cannot be nil")
	}

	c := &Client{
		service: cfg.Service,
		redis:   cfg.RedisClient,
		marshal: cfg.Marshal,
		logger:  cfg.Logger,
		state:   view.New(),
	}

	// Load the setup view: recent sessions plus the live set
	sessions, err := c.service.ListSessions(ctx, &muster.ListSessionsInput{})
	if err != nil {
		return nil, err
	}

	active, err := c.service.ListActiveSessions(ctx, &muster.ListActiveSessionsInput{})
	if err != nil {
		return nil, err
	}

	c.state.Sessions = sessions.Sessions
	c.state.ActiveSessions = active.Sessions

	// Session lifecycle notifications are watched even before joining
	// a drill, so new concurrent drills surface on the setup screen.
	if err := c.resubscribe(ctx, ""); err != nil {
		return nil, err
	}

	return c, nil
}

// StartDrill starts a new drill and joins it
func (c *Client) StartDrill(ctx context.Context) (*models.DrillSession, error) {
	output, err := c.service.StartDrill(ctx, &muster.StartDrillInput{
		Initiator: c.marshal.Name,
	})
	if err != nil {
		return nil, err
	}

	if err := c.Join(ctx, output.Session); err != nil {
		return nil, err
	}

	return output.Session, nil
}

// Join loads a session's attendance snapshot and scopes the feed
// subscription to it
func (c *Client) Join(ctx context.Context, session *models.DrillSession) error {
	snapshot, err := c.service.LoadAttendance(ctx, &muster.LoadAttendanceInput{
		SessionID: session.ID,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Join(session, snapshot.Records)
	c.mu.Unlock()

	return c.resubscribe(ctx, session.ID)
}

// Switch discards the current session's view and joins another. The
// abandoned session is not written to.
func (c *Client) Switch(ctx context.Context, session *models.DrillSession) error {
	return c.Join(ctx, session)
}

// Leave returns to the setup view, keeping the session lifecycle
// subscription
func (c *Client) Leave(ctx context.Context) error {
	c.mu.Lock()
	c.state.Leave()
	c.mu.Unlock()

	return c.resubscribe(ctx, "")
}

// StopDrill ends the joined session
func (c *Client) StopDrill(ctx context.Context) (*models.DrillSession, error) {
	session := c.joinedSession()
	if session == nil {
		return nil, muster.ErrSessionNotFound
	}

	output, err := c.service.StopDrill(ctx, &muster.StopDrillInput{
		SessionID: session.ID,
		EndedBy:   c.marshal.Name,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state.Session = output.Session
	c.mu.Unlock()

	return output.Session, nil
}

// CycleStatus advances an employee through the status rotation in the
// joined session
func (c *Client) CycleStatus(ctx context.Context, employeeID string) error {
	session := c.joinedSession()
	if session == nil {
		return muster.ErrSessionNotFound
	}

	output, err := c.service.CycleStatus(ctx, &muster.CycleStatusInput{
		SessionID:  session.ID,
		EmployeeID: employeeID,
		Writer:     c.marshal.Name,
		Known:      c.knownRecord(employeeID),
	})
	if err != nil {
		// Failed writes leave the local view untouched; the miss is
		// visible to the marshal because the status never changes.
		return err
	}

	c.applyOwn(output.Record)
	return nil
}

// SetStatus jumps an employee straight to a status in the joined session
func (c *Client) SetStatus(ctx context.Context, employeeID string, status models.Status) error {
	session := c.joinedSession()
	if session == nil {
		return muster.ErrSessionNotFound
	}

	output, err := c.service.SetStatus(ctx, &muster.SetStatusInput{
		SessionID:  session.ID,
		EmployeeID: employeeID,
		Writer:     c.marshal.Name,
		Status:     status,
		Known:      c.knownRecord(employeeID),
	})
	if err != nil {
		return err
	}

	c.applyOwn(output.Record)
	return nil
}

// SetNote attaches a note to an employee's record, preserving the
// current status
func (c *Client) SetNote(ctx context.Context, employeeID, note string) error {
	session := c.joinedSession()
	if session == nil {
		return muster.ErrSessionNotFound
	}

	output, err := c.service.UpsertAttendance(ctx, &muster.UpsertAttendanceInput{
		SessionID:  session.ID,
		EmployeeID: employeeID,
		Writer:     c.marshal.Name,
		Update:     muster.AttendanceUpdate{Note: &note},
		Known:      c.knownRecord(employeeID),
	})
	if err != nil {
		return err
	}

	c.applyOwn(output.Record)
	return nil
}

// Resync reloads the joined session's full attendance set. Used after
// a feed reconnect, since missed notifications are not replayed.
func (c *Client) Resync(ctx context.Context) error {
	session := c.joinedSession()
	if session == nil {
		return nil
	}

	snapshot, err := c.service.LoadAttendance(ctx, &muster.LoadAttendanceInput{
		SessionID: session.ID,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Attendance = snapshot.Records
	c.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the local view for rendering
func (c *Client) Snapshot() *view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Close tears down the feed subscription
func (c *Client) Close() error {
	c.mu.Lock()
	subscriber := c.subscriber
	done := c.done
	c.subscriber = nil
	c.done = nil
	c.mu.Unlock()

	if subscriber == nil {
		return nil
	}

	err := subscriber.Close()
	<-done
	return err
}

// resubscribe replaces the current subscription with one scoped to the
// given session and restarts the reconciliation loop
func (c *Client) resubscribe(ctx context.Context, sessionID string) error {
	subscriber, err := changefeed.NewSubscriber(ctx, &changefeed.SubscriberConfig{
		RedisClient: c.redis,
		SessionID:   sessionID,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	old := c.subscriber
	oldDone := c.done
	c.subscriber = subscriber
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
		<-oldDone
	}

	go c.reconcile(subscriber, done)
	return nil
}

// reconcile is the single routine folding feed events into the view
func (c *Client) reconcile(subscriber *changefeed.Subscriber, done chan struct{}) {
	defer close(done)

	for msg := range subscriber.Events() {
		c.mu.Lock()
		c.state.Apply(msg)
		c.mu.Unlock()
	}

	c.logger.Debug().Msg("change feed subscription closed")
}

func (c *Client) joinedSession() *models.DrillSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Session
}

func (c *Client) knownRecord(employeeID string) *models.AttendanceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Attendance[employeeID]
}

func (c *Client) applyOwn(record *models.AttendanceRecord) {
	c.mu.Lock()
	c.state.ApplyOwnUpsert(record)
	c.mu.Unlock()
}
