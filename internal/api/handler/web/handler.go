// Package web serves the dashboard page and the htmx endpoints that drive it.
// Every action answers with out-of-band fragments for the regions it changed
// and an HX-Trigger-After-Swap header naming activated sections and charts.
package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/api/response"
	"github.com/newthinker/tasi/internal/core"
	"github.com/newthinker/tasi/internal/dashboard"
	"github.com/newthinker/tasi/internal/view"
)

// SessionCookie carries the dashboard session id.
const SessionCookie = "tasi_session"

// Handler provides the page, region, chart and action handlers.
type Handler struct {
	sessions *dashboard.Sessions
	renderer *view.Renderer
	logger   *zap.Logger
	ttl      time.Duration
}

// NewHandler creates a web handler. ttl bounds the session cookie lifetime;
// zero makes it a browser-session cookie.
func NewHandler(sessions *dashboard.Sessions, renderer *view.Renderer, ttl time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
		ttl:      ttl,
	}
}

// Session returns the controller named by the request cookie.
func (h *Handler) Session(r *http.Request) (*dashboard.Controller, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return h.sessions.Get(cookie.Value)
}

func (h *Handler) setCookie(w http.ResponseWriter, id string) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.ttl > 0 {
		c.MaxAge = int(h.ttl / time.Second)
	}
	http.SetCookie(w, c)
}

// controller resolves the session of an htmx request. A missing session makes
// the browser reload the page, which starts a new one.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*dashboard.Controller, bool) {
	ctrl, ok := h.Session(r)
	if !ok {
		w.Header().Set("HX-Refresh", "true")
		response.Error(w, http.StatusNotFound, core.ErrNoSession)
		return nil, false
	}
	return ctrl, true
}

// Page renders the full dashboard, starting a session when the request has
// none, and runs the initial loads.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.Session(r)
	if !ok {
		var err error
		ctrl, err = h.sessions.Create()
		if err != nil {
			h.logger.Error("creating session", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, err)
			return
		}
	}
	h.setCookie(w, ctrl.ID())
	ctrl.Init(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Page(w, ctrl.Page()); err != nil {
		h.logger.Error("rendering page", zap.String("session", ctrl.ID()), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Region returns the current inner HTML of a region.
func (h *Handler) Region(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	html, err := ctrl.Region(chi.URLParam(r, "region"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// ChartPayload is the chart configuration served to the page script.
type ChartPayload struct {
	ID     string `json:"id"`
	Canvas string `json:"canvas"`
	Kind   string `json:"kind"`
	Config any    `json:"config"`
}

// Chart returns the live chart on a canvas.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	handle, err := ctrl.Chart(chi.URLParam(r, "canvas"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, ChartPayload{
		ID:     handle.ID(),
		Canvas: handle.Canvas(),
		Kind:   handle.Spec().Kind(),
		Config: handle.Config(),
	})
}

// respond writes the changed regions as out-of-band fragments. An error is
// only surfaced as a status when the flow changed nothing; otherwise the
// notification it produced is the report.
func (h *Handler) respond(w http.ResponseWriter, ctrl *dashboard.Controller, o dashboard.Outcome, err error) {
	if err != nil {
		h.logger.Debug("action failed", zap.String("session", ctrl.ID()), zap.Error(err))
		if !o.Changed() {
			response.Error(w, response.StatusFor(err), err)
			return
		}
	}

	triggers := make(map[string]any)
	if o.Section != "" {
		triggers["tasi:section"] = map[string]string{"id": o.Section}
	}
	if len(o.Charts) > 0 {
		triggers["tasi:chart"] = map[string][]string{"canvases": o.Charts}
	}
	if len(triggers) > 0 {
		if b, err := json.Marshal(triggers); err == nil {
			w.Header().Set("HX-Trigger-After-Swap", string(b))
		}
	}

	var sb strings.Builder
	regions := ctrl.Regions()
	for _, region := range o.Regions {
		sb.WriteString(string(view.OOB(region, regions.Get(region))))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sb.String()))
}
