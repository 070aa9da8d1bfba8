package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/auth"
	"upwork-proposals/internal/storage"
)

// SessionCookie carries the opaque session token.
const SessionCookie = "upwork_session"

type ctxKey int

const userKey ctxKey = iota

type LoginRequest struct {
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"correct horse"`
}

type SignupRequest struct {
	Email       string `json:"email" example:"ana@example.com"`
	Password    string `json:"password" example:"correct horse"`
	Name        string `json:"name" example:"Ana Lima"`
	CompanyName string `json:"companyName" example:"Lima Studio"`
}

type UserResponse struct {
	Success bool          `json:"success"`
	User    *storage.User `json:"user"`
}

type MeResponse struct {
	Success         bool          `json:"success"`
	User            *storage.User `json:"user"`
	UpworkConnected bool          `json:"upworkConnected"`
}

// requireAuth resolves the session cookie and puts the user on the request context.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.currentUser(r)
		if err != nil {
			if errors.Is(err, auth.ErrSessionExpired) || errors.Is(err, auth.ErrSessionNotFound) {
				a.clearSessionCookie(w)
			}
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	}
}

func (a *API) currentUser(r *http.Request) (*storage.User, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, fmt.Errorf("no session cookie: %w", apperr.ErrAuthenticationRequired)
	}
	return a.auth.Verify(r.Context(), c.Value)
}

// userFrom returns the user stored by requireAuth.
func userFrom(ctx context.Context) *storage.User {
	u, _ := ctx.Value(userKey).(*storage.User)
	return u
}

func (a *API) setSessionCookie(w http.ResponseWriter, s *storage.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignupHandler creates the single account of this installation
// @Summary Sign up
// @Description Creates the only user. Fails with 409 once an account exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Account details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/signup [post]
func (a *API) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, session, err := a.auth.Signup(r.Context(), auth.SignupRequest{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, UserResponse{Success: true, User: user})
}

// LoginHandler starts a session
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (a *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, session, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// LogoutHandler ends the current session. Calling it without a session is not an error.
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (a *API) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if err := a.auth.Logout(r.Context(), c.Value); err != nil {
			writeError(w, r, err)
			return
		}
	}
	a.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// MeHandler returns the logged-in user
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (a *API) MeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	user := userFrom(r.Context())
	status, err := a.tokens.Status(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{Success: true, User: user, UpworkConnected: status.Connected})
}
