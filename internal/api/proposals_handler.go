package api

import (
	"net/http"

	"upwork-proposals/internal/proposal"
	"upwork-proposals/internal/storage"
)

type GenerateRequest struct {
	JobID string `json:"jobId" example:"7f1c2a9e-4b1d-5c55-9a8e-0d3c1b2f6e11"`
	// Job is optional; when absent the job is looked up among the ones the user was shown.
	Job *storage.Job `json:"job,omitempty"`
}

type SaveRequest struct {
	JobID  string `json:"jobId"`
	Text   string `json:"text"`
	Status string `json:"status,omitempty" example:"saved"`
}

type SendRequest struct {
	JobID string `json:"jobId"`
	Text  string `json:"text"`
}

type GenerateResponse struct {
	Success bool `json:"success"`
	*proposal.GenerateResult
}

type SaveResponse struct {
	Success bool `json:"success"`
	*proposal.SaveResult
}

type SendResponse struct {
	Success bool `json:"success"`
	*proposal.SendResult
}

type HistoryResponse struct {
	Success   bool               `json:"success"`
	Proposals []storage.Proposal `json:"proposals"`
}

// GenerateProposalHandler drafts a proposal for a job
// @Summary Generate proposal
// @Description Uses the configured LLM. When it is unavailable a template-based draft is returned instead.
// @Tags proposals
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Job to write for"
// @Success 200 {object} GenerateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /proposals/generate [post]
func (a *API) GenerateProposalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.proposals.Generate(r.Context(), userFrom(r.Context()).ID, req.JobID, req.Job)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Success: true, GenerateResult: res})
}

// SaveProposalHandler stores edited proposal text
// @Summary Save proposal
// @Tags proposals
// @Accept json
// @Produce json
// @Param request body SaveRequest true "Proposal text"
// @Success 200 {object} SaveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /proposals/save [post]
func (a *API) SaveProposalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req SaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var status storage.ProposalStatus
	if req.Status != "" {
		st, err := proposal.ParseStatus(req.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status = st
	}
	res, err := a.proposals.Save(r.Context(), userFrom(r.Context()).ID, req.JobID, req.Text, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Success: true, SaveResult: res})
}

// SendProposalHandler submits a proposal and marks it sent
// @Summary Send proposal
// @Description Submission to Upwork is best effort; the proposal is marked sent either way.
// @Tags proposals
// @Accept json
// @Produce json
// @Param request body SendRequest true "Proposal text"
// @Success 200 {object} SendResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /proposals/send [post]
func (a *API) SendProposalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req SendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.proposals.Send(r.Context(), userFrom(r.Context()).ID, req.JobID, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SendResponse{Success: true, SendResult: res})
}

// ProposalHistoryHandler lists past proposals, most recently updated first
// @Summary Proposal history
// @Tags proposals
// @Produce json
// @Param limit query int false "Max rows (default 50, max 200)"
// @Success 200 {object} HistoryResponse
// @Failure 401 {object} ErrorResponse
// @Router /proposals/history [get]
func (a *API) ProposalHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := a.proposals.History(r.Context(), userFrom(r.Context()).ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []storage.Proposal{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Success: true, Proposals: list})
}
