package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/firewatch/muster/internal/models"
	"github.com/firewatch/muster/internal/report"
	"github.com/firewatch/muster/internal/services/muster"
)

type addMarshalRequest struct {
	Name string `json:"name"`
}

type addEmployeeRequest struct {
	Name      string `json:"name"`
	Dept      string `json:"dept"`
	MarshalID string `json:"marshal_id"`
}

type startDrillRequest struct {
	Initiator string `json:"initiator"`
}

type stopDrillRequest struct {
	EndedBy string `json:"ended_by"`
}

type upsertAttendanceRequest struct {
	Writer string         `json:"writer"`
	Status *models.Status `json:"status"`
	Note   *string        `json:"note"`

	// Known is the client's current local record for the pair; the
	// merge fills unspecified fields from it
	Known *models.AttendanceRecord `json:"known"`
}

type cycleStatusRequest struct {
	Writer string                   `json:"writer"`
	Known  *models.AttendanceRecord `json:"known"`
}

func (s *Server) handleListMarshals(w http.ResponseWriter, r *http.Request) {
	output, err := s.service.ListMarshals(r.Context(), &muster.ListMarshalsInput{})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output.Marshals)
}

func (s *Server) handleAddMarshal(w http.ResponseWriter, r *http.Request) {
	var req addMarshalRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	output, err := s.service.AddMarshal(r.Context(), &muster.AddMarshalInput{
		Name: req.Name,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, output.Marshal)
}

func (s *Server) handleRemoveMarshal(w http.ResponseWriter, r *http.Request) {
	err := s.service.RemoveMarshal(r.Context(), &muster.RemoveMarshalInput{
		MarshalID: r.PathValue("id"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	output, err := s.service.ListEmployees(r.Context(), &muster.ListEmployeesInput{
		MarshalID: r.URL.Query().Get("marshal_id"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output.Employees)
}

func (s *Server) handleAddEmployee(w http.ResponseWriter, r *http.Request) {
	var req addEmployeeRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	output, err := s.service.AddEmployee(r.Context(), &muster.AddEmployeeInput{
		Name:      req.Name,
		Dept:      req.Dept,
		MarshalID: req.MarshalID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, output.Employee)
}

func (s *Server) handleRemoveEmployee(w http.ResponseWriter, r *http.Request) {
	err := s.service.RemoveEmployee(r.Context(), &muster.RemoveEmployeeInput{
		EmployeeID: r.PathValue("id"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("active") == "true" {
		output, err := s.service.ListActiveSessions(r.Context(), &muster.ListActiveSessionsInput{})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, output.Sessions)
		return
	}

	output, err := s.service.ListSessions(r.Context(), &muster.ListSessionsInput{})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output.Sessions)
}

func (s *Server) handleStartDrill(w http.ResponseWriter, r *http.Request) {
	var req startDrillRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	output, err := s.service.StartDrill(r.Context(), &muster.StartDrillInput{
		Initiator: req.Initiator,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info().Str("session_id", output.Session.ID).Str("initiator", req.Initiator).Msg("drill started")
	s.writeJSON(w, http.StatusCreated, output.Session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	output, err := s.service.GetSession(r.Context(), &muster.GetSessionInput{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output.Session)
}

func (s *Server) handleStopDrill(w http.ResponseWriter, r *http.Request) {
	var req stopDrillRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	output, err := s.service.StopDrill(r.Context(), &muster.StopDrillInput{
		SessionID: r.PathValue("id"),
		EndedBy:   req.EndedBy,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info().Str("session_id", output.Session.ID).Str("ended_by", req.EndedBy).Msg("drill stopped")
	s.writeJSON(w, http.StatusOK, output.Session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteSession(r.Context(), &muster.DeleteSessionInput{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadAttendance(w http.ResponseWriter, r *http.Request) {
	output, err := s.service.LoadAttendance(r.Context(), &muster.LoadAttendanceInput{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output.Records)
}

func (s *Server) handleUpsertAttendance(w http.ResponseWriter, r *http.Request) {
	var req upsertAttendanceRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	output, err := s.service.UpsertAttendance(r.Context(), &muster.UpsertAttendanceInput{
		SessionID:  r.PathValue("id"),
		EmployeeID: r.PathValue("employee_id"),
		Writer:     req.Writer,
		Update: muster.AttendanceUpdate{
			Status: req.Status,
			Note:   req.Note,
		},
		Known: req.Known,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output.Record)
}

func (s *Server) handleCycleStatus(w http.ResponseWriter, r *http.Request) {
	var req cycleStatusRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	output, err := s.service.CycleStatus(r.Context(), &muster.CycleStatusInput{
		SessionID:  r.PathValue("id"),
		EmployeeID: r.PathValue("employee_id"),
		Writer:     req.Writer,
		Known:      req.Known,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output.Record)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	session, err := s.service.GetSession(ctx, &muster.GetSessionInput{SessionID: sessionID})
	if err != nil {
		s.writeError(w, err)
		return
	}

	marshals, err := s.service.ListMarshals(ctx, &muster.ListMarshalsInput{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	employees, err := s.service.ListEmployees(ctx, &muster.ListEmployeesInput{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	attendance, err := s.service.LoadAttendance(ctx, &muster.LoadAttendanceInput{SessionID: sessionID})
	if err != nil {
		s.writeError(w, err)
		return
	}

	text := report.Build(&report.Input{
		Session:    session.Session,
		Marshals:   marshals.Marshals,
		Employees:  employees.Employees,
		Attendance: attendance.Records,
		Now:        time.Now(),
	})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, muster.ErrSessionNotFound),
		errors.Is(err, muster.ErrMarshalNotFound),
		errors.Is(err, muster.ErrEmployeeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, muster.ErrSessionEnded),
		errors.Is(err, muster.ErrEmptyName),
		errors.Is(err, muster.ErrEmptyInitiator),
		errors.Is(err, muster.ErrEmptyWriter),
		errors.Is(err, muster.ErrInvalidStatus):
		status = http.StatusBadRequest
	}

	http.Error(w, err.Error(), status)
}
