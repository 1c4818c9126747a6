package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/newthinker/tasi/internal/api/response"
	"github.com/newthinker/tasi/internal/job"
)

// JobSource defines the interface needed from job.Store.
type JobSource interface {
	Get(id string) (*job.Job, error)
	List() []job.Job
}

// JobsHandler handles strategy job requests.
type JobsHandler struct {
	jobs JobSource
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(jobs JobSource) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// List returns all tracked jobs, oldest first. The session query parameter
// narrows the list to one session.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	all := h.jobs.List()

	jobs := make([]job.Job, 0, len(all))
	for _, j := range all {
		if session == "" || j.Session == session {
			jobs = append(jobs, j)
		}
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// Get returns one job.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}
