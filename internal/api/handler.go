package api

import (
	"context"
	"net/http"

	"upwork-proposals/internal/auth"
	"upwork-proposals/internal/config"
	"upwork-proposals/internal/jobs"
	"upwork-proposals/internal/proposal"
	"upwork-proposals/internal/settings"
	"upwork-proposals/internal/upwork"
)

type API struct {
	cfg       *config.Config
	auth      *auth.Service
	jobs      *jobs.Service
	settings  *settings.Service
	proposals *proposal.Service
	tokens    *upwork.TokenManager
	oauth     *upwork.Exchanger
	state     *upwork.StateSigner
	ping      func(ctx context.Context) error
}

// Options wires the services the handlers delegate to. OAuth and State may be nil
// when the Upwork integration is not configured.
type Options struct {
	Config    *config.Config
	Auth      *auth.Service
	Jobs      *jobs.Service
	Settings  *settings.Service
	Proposals *proposal.Service
	Tokens    *upwork.TokenManager
	OAuth     *upwork.Exchanger
	State     *upwork.StateSigner
	// Ping reports database health for /health.
	Ping func(ctx context.Context) error
}

func NewAPI(opts Options) *API {
	return &API{
		cfg:       opts.Config,
		auth:      opts.Auth,
		jobs:      opts.Jobs,
		settings:  opts.Settings,
		proposals: opts.Proposals,
		tokens:    opts.Tokens,
		oauth:     opts.OAuth,
		state:     opts.State,
		ping:      opts.Ping,
	}
}

// HealthHandler reports liveness and database reachability (for Railway, k8s, etc.)
func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if a.ping != nil {
		if err := a.ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
