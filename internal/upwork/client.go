package upwork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"upwork-proposals/internal/apperr"
)

// ErrUnauthorized is returned when the API rejects the bearer token.
var ErrUnauthorized = errors.New("upwork rejected the access token")

// Client is a thin GraphQL client for the Upwork API.
type Client struct {
	rc       *resty.Client
	endpoint string
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	var rc *resty.Client
	if httpClient != nil {
		rc = resty.NewWithClient(httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{rc: rc, endpoint: endpoint}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Query runs a GraphQL document and decodes the "data" member into out.
// Errors are classified as ErrUnauthorized, apperr.ErrUpstreamUnavailable or
// apperr.ErrUpstreamSchemaMismatch.
func (c *Client) Query(ctx context.Context, accessToken, query string, variables map[string]any, out any) error {
	var body graphQLResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		SetResult(&body).
		SetError(&body).
		Post(c.endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("upwork request: %w: %v", apperr.ErrUpstreamUnavailable, ctx.Err())
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("upwork response is not JSON: %w", apperr.ErrUpstreamSchemaMismatch)
		}
		return fmt.Errorf("upwork request: %w: %v", apperr.ErrUpstreamUnavailable, err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status >= 500 || status == http.StatusTooManyRequests:
		return fmt.Errorf("upwork status %d: %w", status, apperr.ErrUpstreamUnavailable)
	case status >= 400:
		return fmt.Errorf("upwork status %d: %s: %w", status, joinMessages(body.Errors), apperr.ErrUpstreamSchemaMismatch)
	}

	if len(body.Errors) > 0 && len(body.Data) == 0 || len(body.Errors) > 0 && string(body.Data) == "null" {
		msg := joinMessages(body.Errors)
		if isAuthMessage(msg) {
			return ErrUnauthorized
		}
		return fmt.Errorf("upwork graphql: %s: %w", msg, apperr.ErrUpstreamSchemaMismatch)
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return fmt.Errorf("upwork graphql: empty data: %w", apperr.ErrUpstreamSchemaMismatch)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("decode upwork data: %w", apperr.ErrUpstreamSchemaMismatch)
	}
	return nil
}

func joinMessages(errs []graphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func isAuthMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "unauthorized") || strings.Contains(m, "token expired") || strings.Contains(m, "invalid token")
}
