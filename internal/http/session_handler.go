package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/view"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	CookieName = "storefront-session"

	cookieClientID  = "client_id"
	cookieSessionID = "sid"

	maxRequestBodySize = 1 << 20
)

type SessionManager interface {
	Start(ctx context.Context, clientID string, params view.LaunchParams) (session.Frame, error)
	Frame(id string) (session.Frame, error)
	Dispatch(ctx context.Context, id string, event view.Event) (session.Frame, error)
}

type SessionHandler struct {
	manager SessionManager
	cookies sessions.Store
	timeout time.Duration
	logger  *zap.Logger
}

func NewSessionHandler(manager SessionManager, cookies sessions.Store, timeout time.Duration, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		manager: manager,
		cookies: cookies,
		timeout: timeout,
		logger:  logger,
	}
}

// POST /api/v1/session
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var params view.LaunchParams
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// a broken or foreign cookie only costs the persisted state
	cookie, _ := h.cookies.Get(r, CookieName)
	clientID, _ := cookie.Values[cookieClientID].(string)
	if clientID == "" {
		clientID = uuid.NewString()
		cookie.Values[cookieClientID] = clientID
	}

	frame, err := h.manager.Start(ctx, clientID, params)
	if err != nil {
		h.logger.Error("failed to start session",
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to start session")
		return
	}

	cookie.Values[cookieSessionID] = frame.SessionID
	if err := cookie.Save(r, w); err != nil {
		h.logger.Error("failed to save session cookie", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save session")
		return
	}
	respondJSON(w, http.StatusCreated, frame)
}

// GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	frame, err := h.manager.Frame(id)
	if err != nil {
		h.handleError(w, r, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, frame)
}

// POST /api/v1/session/events
func (h *SessionHandler) Event(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var event view.Event
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if event.Screen == "" || event.Action == "" {
		respondError(w, http.StatusBadRequest, "invalid_event", "screen and action are required")
		return
	}

	frame, err := h.manager.Dispatch(ctx, id, event)
	if err != nil {
		h.handleError(w, r, err, &frame)
		return
	}
	respondJSON(w, http.StatusOK, frame)
}

func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := h.cookies.Get(r, CookieName)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid_session", "session cookie is invalid")
		return "", false
	}
	id, _ := cookie.Values[cookieSessionID].(string)
	if id == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "no storefront session")
		return "", false
	}
	return id, true
}

// handleError maps session errors to HTTP statuses. A rejected event carries
// the current frame so the page can redraw.
func (h *SessionHandler) handleError(w http.ResponseWriter, r *http.Request, err error, frame *session.Frame) {
	var details any
	if frame != nil && frame.SessionID != "" {
		details = frame
	}

	var status int
	var code string
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status, code = http.StatusNotFound, "session_not_found"
	case errors.Is(err, view.ErrStaleScreen):
		status, code = http.StatusConflict, "stale_screen"
	case errors.Is(err, view.ErrUnknownAction), errors.Is(err, view.ErrUnknownView):
		status, code = http.StatusBadRequest, "invalid_event"
	default:
		h.logger.Error("session request failed",
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: code, Details: details})
}
