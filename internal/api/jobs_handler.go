package api

import (
	"net/http"
	"strings"

	"upwork-proposals/internal/jobs"
)

// JobsResponse wraps a listing. Degraded listings still answer 200 with a message.
type JobsResponse struct {
	Success bool `json:"success"`
	*jobs.ListResult
}

// ListJobsHandler lists Upwork jobs for the logged-in user
// @Summary List jobs
// @Description Cached for a few minutes per user. Falls back to recently stored jobs when Upwork is unreachable.
// @Tags jobs
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Param q query string false "Filter on title, description and skills"
// @Success 200 {object} JobsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /jobs [get]
func (a *API) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user := userFrom(r.Context())
	res, err := a.jobs.List(r.Context(), user.ID, jobs.ListRequest{
		Page:     page,
		PageSize: pageSize,
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, JobsResponse{Success: true, ListResult: res})
}

// ClearJobCacheHandler drops the user's cached listing
// @Summary Clear job cache
// @Tags jobs
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /jobs/cache/clear [post]
func (a *API) ClearJobCacheHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	a.jobs.ClearCache(userFrom(r.Context()).ID)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Job cache cleared"})
}
