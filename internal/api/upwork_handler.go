package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/upwork"
)

type ConnectResponse struct {
	Success bool   `json:"success"`
	AuthURL string `json:"authUrl"`
}

type UpworkStatusResponse struct {
	Success         bool       `json:"success"`
	UpworkConnected bool       `json:"upworkConnected"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	Expired         bool       `json:"expired"`
}

var errUpworkNotConfigured = fmt.Errorf("upwork integration is not configured: %w", apperr.ErrUpstreamUnavailable)

// UpworkConnectHandler returns the Upwork authorization URL
// @Summary Start Upwork OAuth
// @Tags upwork
// @Produce json
// @Success 200 {object} ConnectResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /upwork/connect [get]
func (a *API) UpworkConnectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if a.oauth == nil || a.state == nil {
		writeError(w, r, errUpworkNotConfigured)
		return
	}
	state, err := a.state.Issue(userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConnectResponse{Success: true, AuthURL: a.oauth.AuthorizationURL(state)})
}

// UpworkCallbackHandler finishes the OAuth flow and sends the browser back to the app
// @Summary Upwork OAuth callback
// @Description Verifies state, exchanges the code and redirects to the app with ?upwork=connected or ?upwork=error.
// @Tags upwork
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /upwork/connect"
// @Success 302
// @Router /upwork/callback [get]
func (a *API) UpworkCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	user, err := a.currentUser(r)
	if err != nil {
		a.redirectToApp(w, r, "error", "login_required")
		return
	}
	if a.oauth == nil || a.state == nil {
		a.redirectToApp(w, r, "error", "not_configured")
		return
	}
	q := r.URL.Query()
	if denied := q.Get("error"); denied != "" {
		log.Printf("[UpworkOAuth] Authorization denied for user %s: %s", user.ID, denied)
		a.redirectToApp(w, r, "error", denied)
		return
	}
	if err := a.state.Verify(q.Get("state"), user.ID); err != nil {
		log.Printf("[UpworkOAuth] Rejected callback for user %s: %v", user.ID, err)
		a.redirectToApp(w, r, "error", "invalid_state")
		return
	}
	code := q.Get("code")
	if code == "" {
		a.redirectToApp(w, r, "error", "missing_code")
		return
	}
	if _, err := a.tokens.Connect(r.Context(), user.ID, code); err != nil {
		log.Printf("[UpworkOAuth] Code exchange failed for user %s: %v", user.ID, err)
		reason := "exchange_failed"
		var exErr *upwork.TokenExchangeError
		if errors.As(err, &exErr) && exErr.Code != "" {
			reason = exErr.Code
		}
		a.redirectToApp(w, r, "error", reason)
		return
	}
	a.jobs.ClearCache(user.ID)
	a.redirectToApp(w, r, "connected", "")
}

// UpworkDisconnectHandler deletes the stored Upwork tokens
// @Summary Disconnect Upwork
// @Tags upwork
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /upwork/disconnect [post]
func (a *API) UpworkDisconnectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	user := userFrom(r.Context())
	if err := a.tokens.Disconnect(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	a.jobs.ClearCache(user.ID)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Upwork account disconnected"})
}

// UpworkStatusHandler reports whether an Upwork account is linked
// @Summary Upwork connection status
// @Tags upwork
// @Produce json
// @Success 200 {object} UpworkStatusResponse
// @Failure 401 {object} ErrorResponse
// @Router /upwork/status [get]
func (a *API) UpworkStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	st, err := a.tokens.Status(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UpworkStatusResponse{
		Success:         true,
		UpworkConnected: st.Connected,
		ExpiresAt:       st.ExpiresAt,
		Expired:         st.Expired,
	})
}

func (a *API) redirectToApp(w http.ResponseWriter, r *http.Request, result, reason string) {
	target, err := url.Parse(a.cfg.AppURL)
	if err != nil || a.cfg.AppURL == "" {
		target = &url.URL{Path: "/"}
	}
	q := target.Query()
	q.Set("upwork", result)
	if reason != "" {
		q.Set("reason", reason)
	}
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}
