package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/notify"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/storage"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/tracker"
)

// UserHeader carries the authenticated caller id, set by the fronting gateway.
const UserHeader = "X-User-ID"

const requestTimeout = 10 * time.Second

// Server provides the project and notification JSON API.
type Server struct {
	tracker *tracker.ProjectTracker
	inbox   *notify.Service
	mux     *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates an API server.
func NewServer(t *tracker.ProjectTracker, inbox *notify.Service, logger *slog.Logger) *Server {
	s := &Server{
		tracker: t,
		inbox:   inbox,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/projects", s.withUser(s.handleListProjects))
	s.mux.HandleFunc("GET /api/v1/projects/{id}", s.withUser(s.handleGetProject))
	s.mux.HandleFunc("GET /api/v1/notifications", s.withUser(s.handleListNotifications))
	s.mux.HandleFunc("GET /api/v1/notifications/unread-count", s.withUser(s.handleUnreadCount))
	s.mux.HandleFunc("POST /api/v1/notifications/{id}/read", s.withUser(s.handleMarkRead))
	s.mux.HandleFunc("POST /api/v1/notifications/read-all", s.withUser(s.handleMarkAllRead))
	s.mux.HandleFunc("DELETE /api/v1/notifications/{id}", s.withUser(s.handleDeleteNotification))
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// withUser rejects requests without a caller id.
func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing "+UserHeader+" header")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reports, err := s.tracker.ListReports(ctx, userID)
	if err != nil {
		s.internalError(w, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request, _ string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := s.tracker.EvaluateByID(ctx, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.internalError(w, "evaluate project", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := model.NotificationFilter{
		UserID: userID,
		Status: model.NotificationStatus(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	notifications, err := s.inbox.List(ctx, filter)
	if err != nil {
		s.internalError(w, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	count, err := s.inbox.UnreadCount(ctx, userID)
	if err != nil {
		s.internalError(w, "count unread notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	n, err := s.inbox.MarkRead(ctx, userID, r.PathValue("id"))
	if errors.Is(err, notify.ErrNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		s.internalError(w, "mark notification read", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	updated, err := s.inbox.MarkAllRead(ctx, userID)
	if err != nil {
		s.internalError(w, "mark all notifications read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := s.inbox.Delete(ctx, userID, r.PathValue("id"))
	if errors.Is(err, notify.ErrNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		s.internalError(w, "delete notification", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
