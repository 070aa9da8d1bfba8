package upwork

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/apperr"
)

func newTokenServer(t *testing.T, handler http.HandlerFunc) (*Exchanger, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	ex := NewExchanger(OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/api/upwork/callback",
		AuthURL:      srv.URL + "/authorize",
		TokenURL:     srv.URL + "/token",
	}, srv.Client())
	return ex, srv
}

func TestAuthorizationURL(t *testing.T) {
	ex, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {})

	raw := ex.AuthorizationURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "http://localhost:8080/api/upwork/callback", q.Get("redirect_uri"))
}

func TestExchange_Success(t *testing.T) {
	ex, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"bearer","expires_in":3600}`))
	})

	pair, err := ex.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at-1", pair.AccessToken)
	assert.Equal(t, "rt-1", pair.RefreshToken)
	assert.False(t, pair.Expiry.IsZero())
	assert.InDelta(t, 3600, pair.ExpiresIn, 5)
}

func TestExchange_Failures(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		status   int
		body     string
		wantCode string
	}{
		{name: "provider rejects code", code: "bad", status: http.StatusBadRequest, body: `{"error":"invalid_grant","error_description":"code expired"}`, wantCode: "invalid_grant"},
		{name: "server error", code: "c", status: http.StatusInternalServerError, body: `oops`},
		{name: "no access token", code: "c", status: http.StatusOK, body: `{"token_type":"bearer"}`},
		{name: "empty code", code: "", status: http.StatusOK, body: `{}`, wantCode: "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			pair, err := ex.Exchange(context.Background(), tt.code)
			assert.Nil(t, pair)
			var exErr *TokenExchangeError
			require.True(t, errors.As(err, &exErr), "got %T: %v", err, err)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, exErr.Code)
			}
		})
	}
}

func TestExchange_TransportError(t *testing.T) {
	ex, srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	pair, err := ex.Exchange(context.Background(), "code")
	assert.Nil(t, pair)
	var exErr *TokenExchangeError
	assert.True(t, errors.As(err, &exErr))
}

func TestRefresh(t *testing.T) {
	ex, _ := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("refresh_token") != "rt-1" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"at-2","token_type":"bearer","expires_in":3600}`))
	})

	pair, err := ex.Refresh(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", pair.AccessToken)
	assert.Empty(t, pair.RefreshToken, "unchanged refresh token is not reported as new")

	_, err = ex.Refresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, apperr.ErrRequiresReconnect)

	_, err = ex.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrRequiresReconnect)
}
