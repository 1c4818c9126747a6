package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/newthinker/tasi/internal/dashboard"
)

// ShowSection activates the section in the URL.
func (h *Handler) ShowSection(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	o, err := ctrl.ShowSection(chi.URLParam(r, "section"))
	h.respond(w, ctrl, o, err)
}

// Search filters the stock grid by the q form value.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, ctrl, ctrl.Search(r.FormValue("q")), nil)
}

// ReloadStocks reloads the stock list from the backend.
func (h *Handler) ReloadStocks(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, ctrl, ctrl.ReloadStocks(r.Context()), nil)
}

// OpenStock shows the detail modal of the stock in the URL.
func (h *Handler) OpenStock(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	o, err := ctrl.OpenStock(r.Context(), chi.URLParam(r, "symbol"))
	h.respond(w, ctrl, o, err)
}

// CloseStock hides the detail modal.
func (h *Handler) CloseStock(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, ctrl, ctrl.CloseStock(), nil)
}

// LoadIndicators loads the indicator form selection.
func (h *Handler) LoadIndicators(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	indicator := r.FormValue("indicator")
	if indicator == "" {
		indicator = dashboard.IndicatorAll
	}
	o, err := ctrl.LoadIndicators(r.Context(), r.FormValue("symbol"), indicator)
	h.respond(w, ctrl, o, err)
}

// ApplyStrategy starts the strategy in the URL. The job id is returned in
// the X-Job-ID header.
func (h *Handler) ApplyStrategy(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	o, j := ctrl.ApplyStrategy(chi.URLParam(r, "strategy"))
	w.Header().Set("X-Job-ID", j.ID)
	h.respond(w, ctrl, o, nil)
}
