package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/settings"
)

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/api/auth/me", "/api/jobs", "/api/settings", "/api/proposals/history", "/api/upwork/status"} {
		t.Run(path, func(t *testing.T) {
			var body ErrorResponse
			resp := e.do(t, http.MethodGet, path, nil, &body)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.False(t, body.Success)
			assert.Equal(t, "authentication_required", body.Error)
		})
	}
}

func TestSignupLoginLogout(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	var me MeResponse
	resp := e.do(t, http.MethodGet, "/api/auth/me", nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana@example.com", me.User.Email)
	assert.False(t, me.UpworkConnected)

	var conflict ErrorResponse
	resp = e.do(t, http.MethodPost, "/api/auth/signup", SignupRequest{
		Email: "bob@example.com", Password: "long enough", Name: "Bob",
	}, &conflict)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", conflict.Error)

	resp = e.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ana@example.com", Password: "wrong password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var user UserResponse
	resp = e.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ANA@example.com", Password: "correct horse"}, &user)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana Lima", user.User.Name)

	resp = e.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionCookieAttributes(t *testing.T) {
	e := newTestEnv(t)
	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/auth/signup",
		strings.NewReader(`{"email":"ana@example.com","password":"correct horse","name":"Ana"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
	assert.Len(t, session.Value, 64)
}

func TestSettingsRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	var got SettingsResponse
	e.do(t, http.MethodGet, "/api/settings", nil, &got)
	assert.Equal(t, "Freelance Developer", got.Settings.BasicInfo.Title)
	assert.Equal(t, 0.7, got.Settings.AISettings.Temperature)

	info := got.Settings.BasicInfo
	info.Name = "Ana Lima"
	resp := e.do(t, http.MethodPut, "/api/settings", settings.Patch{BasicInfo: &info}, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana Lima", got.Settings.BasicInfo.Name)
	assert.Equal(t, "Main template", got.Settings.ProposalTemplates[0].Title)

	bad := got.Settings.AISettings
	bad.Temperature = 3
	var errBody ErrorResponse
	resp = e.do(t, http.MethodPut, "/api/settings", settings.Patch{AISettings: &bad}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", errBody.Error)
}

func TestBadRequests(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{name: "wrong method", method: http.MethodGet, path: "/api/proposals/generate", wantStatus: http.StatusMethodNotAllowed},
		{name: "missing body", method: http.MethodPost, path: "/api/proposals/save", wantStatus: http.StatusBadRequest},
		{name: "unknown status", method: http.MethodPost, path: "/api/proposals/save", body: SaveRequest{JobID: "J1", Text: "x", Status: "archived"}, wantStatus: http.StatusBadRequest},
		{name: "save as sent", method: http.MethodPost, path: "/api/proposals/save", body: SaveRequest{JobID: "J1", Text: "x", Status: "sent"}, wantStatus: http.StatusBadRequest},
		{name: "missing job id", method: http.MethodPost, path: "/api/proposals/send", body: SendRequest{Text: "x"}, wantStatus: http.StatusBadRequest},
		{name: "unknown job", method: http.MethodPost, path: "/api/proposals/generate", body: GenerateRequest{JobID: "nope"}, wantStatus: http.StatusNotFound},
		{name: "bad page", method: http.MethodGet, path: "/api/jobs?page=abc", wantStatus: http.StatusBadRequest},
		{name: "bad limit", method: http.MethodGet, path: "/api/proposals/history?limit=-1", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			resp := e.do(t, tt.method, tt.path, tt.body, &body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestSaveReportsCreation(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	var first, second SaveResponse
	e.do(t, http.MethodPost, "/api/proposals/save", SaveRequest{JobID: "J9", Text: "Draft one"}, &first)
	e.do(t, http.MethodPost, "/api/proposals/save", SaveRequest{JobID: "J9", Text: "Draft two"}, &second)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, e.store.ProposalCount())
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)

	w := httptest.NewRecorder()
	writeError(w, r, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = httptest.NewRecorder()
	writeError(w, r, apperr.ErrUpstreamUnavailable)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream_unavailable")
}

func TestHealth(t *testing.T) {
	a := NewAPI(Options{Ping: func(ctx context.Context) error { return errors.New("db down") }})
	w := httptest.NewRecorder()
	a.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	a = NewAPI(Options{})
	w = httptest.NewRecorder()
	a.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
