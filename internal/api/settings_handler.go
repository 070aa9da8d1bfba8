package api

import (
	"net/http"

	"upwork-proposals/internal/settings"
)

type SettingsResponse struct {
	Success  bool              `json:"success"`
	Settings settings.Settings `json:"settings"`
}

// SettingsHandler reads or updates the prompt settings
// @Summary Get or update prompt settings
// @Description PUT replaces only the sections present in the body.
// @Tags settings
// @Accept json
// @Produce json
// @Param patch body settings.Patch false "Sections to replace (PUT only)"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /settings [get]
// @Router /settings [put]
func (a *API) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		s, err := a.settings.Get(r.Context(), user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Settings: s})
	case http.MethodPut:
		var patch settings.Patch
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, r, err)
			return
		}
		s, err := a.settings.Update(r.Context(), user.ID, patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if patch.ValidationRules != nil {
			// New search keywords or filters: the next listing starts over upstream.
			a.jobs.ClearCache(user.ID)
		}
		writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Settings: s})
	default:
		methodNotAllowed(w)
	}
}
