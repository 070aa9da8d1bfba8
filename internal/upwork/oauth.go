// Package upwork talks to the Upwork OAuth endpoints and the GraphQL marketplace API.
package upwork

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"upwork-proposals/internal/apperr"
)

// OAuthConfig holds the registered client and the provider endpoints.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// TokenPair is the result of a successful exchange or refresh.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int64     `json:"expiresIn"`
	Expiry       time.Time `json:"expiry"`
}

// TokenExchangeError is returned for every failed authorization-code exchange.
type TokenExchangeError struct {
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *TokenExchangeError) Error() string {
	msg := "upwork token exchange failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil && e.Code == "" && e.Description == "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// Exchanger builds authorization URLs and trades codes and refresh tokens for access tokens.
type Exchanger struct {
	cfg        oauth2.Config
	httpClient *http.Client
}

func NewExchanger(c OAuthConfig, httpClient *http.Client) *Exchanger {
	return &Exchanger{
		cfg: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURI,
			Scopes:       c.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   c.AuthURL,
				TokenURL:  c.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// AuthorizationURL returns the provider consent URL carrying the given state.
func (e *Exchanger) AuthorizationURL(state string) string {
	return e.cfg.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token pair.
// Any failure is reported as *TokenExchangeError; a nil error always comes with an access token.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*TokenPair, error) {
	if code == "" {
		return nil, &TokenExchangeError{Code: "invalid_request", Description: "missing authorization code"}
	}
	tok, err := e.cfg.Exchange(e.withClient(ctx), code)
	if err != nil {
		return nil, toExchangeError(err)
	}
	if tok.AccessToken == "" {
		return nil, &TokenExchangeError{Code: "invalid_response", Description: "token response has no access_token"}
	}
	return toPair(tok), nil
}

// Refresh obtains a new access token. Failures wrap apperr.ErrRequiresReconnect:
// the only way out is a fresh user-driven authorization.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token stored: %w", apperr.ErrRequiresReconnect)
	}
	src := e.cfg.TokenSource(e.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh upwork token: %w: %v", apperr.ErrRequiresReconnect, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("refresh returned no access token: %w", apperr.ErrRequiresReconnect)
	}
	pair := toPair(tok)
	if pair.RefreshToken == refreshToken {
		pair.RefreshToken = ""
	}
	return pair, nil
}

func (e *Exchanger) withClient(ctx context.Context) context.Context {
	if e.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}

func toPair(tok *oauth2.Token) *TokenPair {
	pair := &TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Expiry:       tok.Expiry,
	}
	if !tok.Expiry.IsZero() {
		pair.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return pair
}

func toExchangeError(err error) *TokenExchangeError {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		out := &TokenExchangeError{
			Code:        rErr.ErrorCode,
			Description: rErr.ErrorDescription,
			Err:         err,
		}
		if rErr.Response != nil {
			out.StatusCode = rErr.Response.StatusCode
		}
		return out
	}
	return &TokenExchangeError{Err: err}
}
