// Package api serves the JSON inspection endpoints under /api/v1.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/newthinker/tasi/internal/api/response"
	"github.com/newthinker/tasi/internal/core"
	"github.com/newthinker/tasi/internal/dashboard"
)

// StateSource defines the interface needed from dashboard.Sessions.
type StateSource interface {
	States() []dashboard.State
	State(id string) (dashboard.State, bool)
}

// SessionsHandler handles session inspection requests.
type SessionsHandler struct {
	sessions StateSource
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(sessions StateSource) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// List returns the state of every live session.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	states := h.sessions.States()
	response.JSON(w, http.StatusOK, map[string]any{
		"sessions": states,
		"count":    len(states),
	})
}

// Get returns the state of one session.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, ok := h.sessions.State(id)
	if !ok {
		response.Error(w, http.StatusNotFound, core.ErrNoSession)
		return
	}
	response.JSON(w, http.StatusOK, state)
}
