package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	mux.HandleFunc("/health", a.HealthHandler)

	// Auth (signup/login/logout work without a session)
	mux.HandleFunc("/api/auth/signup", a.SignupHandler)
	mux.HandleFunc("/api/auth/login", a.LoginHandler)
	mux.HandleFunc("/api/auth/logout", a.LogoutHandler)
	mux.HandleFunc("/api/auth/me", a.requireAuth(a.MeHandler))

	// Jobs
	mux.HandleFunc("/api/jobs", a.requireAuth(a.ListJobsHandler))
	mux.HandleFunc("/api/jobs/cache/clear", a.requireAuth(a.ClearJobCacheHandler))

	// Prompt settings
	mux.HandleFunc("/api/settings", a.requireAuth(a.SettingsHandler))

	// Proposals
	mux.HandleFunc("/api/proposals/generate", a.requireAuth(a.GenerateProposalHandler))
	mux.HandleFunc("/api/proposals/save", a.requireAuth(a.SaveProposalHandler))
	mux.HandleFunc("/api/proposals/send", a.requireAuth(a.SendProposalHandler))
	mux.HandleFunc("/api/proposals/history", a.requireAuth(a.ProposalHistoryHandler))

	// Upwork OAuth (the callback reads the session itself so it can redirect instead of answering 401)
	mux.HandleFunc("/api/upwork/connect", a.requireAuth(a.UpworkConnectHandler))
	mux.HandleFunc("/api/upwork/callback", a.UpworkCallbackHandler)
	mux.HandleFunc("/api/upwork/disconnect", a.requireAuth(a.UpworkDisconnectHandler))
	mux.HandleFunc("/api/upwork/status", a.requireAuth(a.UpworkStatusHandler))

	return mux
}
