package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "upwork-proposals/docs" // Swagger docs
	"upwork-proposals/internal/api"
	"upwork-proposals/internal/auth"
	"upwork-proposals/internal/config"
	"upwork-proposals/internal/jobcache"
	"upwork-proposals/internal/jobs"
	"upwork-proposals/internal/llm"
	"upwork-proposals/internal/notify"
	"upwork-proposals/internal/proposal"
	"upwork-proposals/internal/settings"
	"upwork-proposals/internal/storage"
	"upwork-proposals/internal/upwork"
	httpclient "upwork-proposals/pkg/http"
)

// @title Upwork Proposals API
// @version 1.0
// @description Upwork job feed, AI proposal drafting and proposal tracking for a single freelancer.

// @BasePath /api

const housekeepingInterval = 10 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	log.Println("Connecting to database...")
	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(ctx); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()
	log.Println("Database connected successfully!")

	// Upwork OAuth + GraphQL
	upstreamHTTP := httpclient.NewClient(cfg.UpstreamTimeout).Standard()
	var (
		exchanger *upwork.Exchanger
		codes     upwork.CodeExchanger
		signer    *upwork.StateSigner
	)
	if cfg.UpworkConfigured() {
		exchanger = upwork.NewExchanger(upwork.OAuthConfig{
			ClientID:     cfg.UpworkClientID,
			ClientSecret: cfg.UpworkClientSecret,
			RedirectURI:  cfg.UpworkRedirectURI,
			AuthURL:      cfg.UpworkAuthURL,
			TokenURL:     cfg.UpworkTokenURL,
			Scopes:       cfg.UpworkScopes,
		}, upstreamHTTP)
		codes = exchanger
		if signer, err = upwork.NewStateSigner(cfg.StateSecret, 10*time.Minute); err != nil {
			log.Fatalf("oauth state signer: %v", err)
		}
	} else {
		log.Println("Warning: UPWORK_CLIENT_ID/UPWORK_CLIENT_SECRET not set, Upwork connect is disabled")
	}
	tokens := upwork.NewTokenManager(db, codes, cfg.UpstreamTimeout)
	gql := upwork.NewClient(cfg.UpworkGraphQLURL, upstreamHTTP)

	// Optional Telegram job alerts
	var notifier api.JobNotifier
	if cfg.TelegramConfigured() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("Warning: job alerts disabled: %v", err)
		} else {
			notifier = tg
			log.Println("Telegram job alerts enabled")
		}
	}
	workers := api.NewBackgroundWorkers(db, notifier)
	workers.Start()

	// LLM (nil-safe: generation falls back to templates when unset)
	var generator proposal.TextGenerator
	if cfg.LLMProvider == "ollama" || (cfg.LLMProvider != "none" && cfg.LLMAPIKey != "") {
		generator = llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, cfg.LLMTimeout)
		log.Printf("LLM provider: %s (model %s)", cfg.LLMProvider, cfg.LLMModel)
	} else {
		log.Println("Warning: no LLM provider configured, proposals use the template fallback")
	}

	cache := jobcache.New(cfg.JobCacheTTL, nil)
	authSvc := auth.NewService(db, cfg.SessionTTL)
	settingsSvc := settings.NewService(db, cfg.LLMModel)
	jobsSvc := jobs.NewService(jobs.Options{
		Tokens:    tokens,
		Fetcher:   upwork.NewFetcher(gql, cfg.UpstreamTimeout),
		Cache:     cache,
		Store:     db,
		Settings:  settingsSvc,
		Alerts:    workers,
		FetchSize: cfg.JobFetchSize,
	})
	proposalSvc := proposal.NewService(proposal.Options{
		Store:     db,
		Settings:  settingsSvc,
		Jobs:      jobsSvc,
		Generator: proposal.NewGenerator(generator),
		Submitter: upwork.NewSender(tokens, gql),
		Edits:     workers,
	})

	apiSrv := api.NewAPI(api.Options{
		Config:    cfg,
		Auth:      authSvc,
		Jobs:      jobsSvc,
		Settings:  settingsSvc,
		Proposals: proposalSvc,
		Tokens:    tokens,
		OAuth:     exchanger,
		State:     signer,
		Ping:      db.Ping,
	})
	router := api.NewRouter(apiSrv)

	stopHousekeeping := make(chan struct{})
	go housekeeping(cache, authSvc, stopHousekeeping)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 30*time.Second, // generation waits on the LLM
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Println("server shutdown:", err)
		}
		close(stopHousekeeping)
		if err := workers.Stop(ctx); err != nil {
			log.Println("background workers:", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("API server listening on :%s\n", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	<-idleConnsClosed
}

// housekeeping drops expired cache entries and sessions until stop is closed.
func housekeeping(cache *jobcache.Cache, authSvc *auth.Service, stop <-chan struct{}) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := cache.CleanExpired(); n > 0 {
				log.Printf("[Housekeeping] Dropped %d expired job cache entries", n)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := authSvc.PurgeExpired(ctx); err != nil {
				log.Printf("[Housekeeping] Session purge failed: %v", err)
			} else if n > 0 {
				log.Printf("[Housekeeping] Purged %d expired sessions", n)
			}
			cancel()
		}
	}
}
