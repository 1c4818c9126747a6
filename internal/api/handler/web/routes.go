package web

import "github.com/go-chi/chi/v5"

// Routes mounts the page, fragment and action endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Page)
	r.Get("/regions/{region}", h.Region)
	r.Get("/charts/{canvas}", h.Chart)

	r.Route("/actions", func(r chi.Router) {
		r.Post("/section/{section}", h.ShowSection)
		r.Post("/search", h.Search)
		r.Post("/stocks/reload", h.ReloadStocks)
		r.Post("/stocks/close", h.CloseStock)
		r.Post("/stocks/{symbol}/open", h.OpenStock)
		r.Post("/indicators", h.LoadIndicators)
		r.Post("/strategies/{strategy}", h.ApplyStrategy)
	})
}
