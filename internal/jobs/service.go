// Package jobs assembles the job listing the UI shows: cache first, then the
// marketplace API, then whatever was persisted earlier.
package jobs

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/jobcache"
	"upwork-proposals/internal/settings"
	"upwork-proposals/internal/storage"
	"upwork-proposals/internal/upwork"
)

const (
	// persistedMaxAge bounds how stale the fallback listing may be.
	persistedMaxAge = 24 * time.Hour
	persistedLimit  = 200
	// maxFetchPages bounds the upstream calls a single listing request may make.
	maxFetchPages   = 4
	defaultPageSize = 20
	maxPageSize     = 100
)

// Messages shown alongside degraded listings.
const (
	MsgNotConnected = "Connect your Upwork account to see jobs."
	MsgReconnect    = "Your Upwork authorization expired. Please reconnect."
	MsgSavedJobs    = "Showing previously fetched jobs."
	MsgNoJobs       = "No jobs available right now."
)

type TokenSource interface {
	Status(ctx context.Context, userID string) (upwork.ConnectionStatus, error)
	AccessToken(ctx context.Context, userID string) (string, error)
	ForceRefresh(ctx context.Context, userID string) (string, error)
}

type Fetcher interface {
	FetchJobs(ctx context.Context, accessToken string, req upwork.PageRequest) upwork.JobBatch
}

type Store interface {
	UpsertJobs(ctx context.Context, userID string, jobs []storage.Job) ([]string, error)
	ListJobs(ctx context.Context, userID string, since time.Time, limit int) ([]storage.Job, error)
	SearchJobs(ctx context.Context, userID, query string, since time.Time, limit int) ([]storage.Job, error)
	GetJob(ctx context.Context, userID, jobID string) (*storage.Job, error)
}

type SettingsSource interface {
	Get(ctx context.Context, userID string) (settings.Settings, error)
}

// Alerter is told about jobs seen for the first time. It must not block.
type Alerter interface {
	AlertJobs(jobs []storage.Job)
}

type ListRequest struct {
	Page     int
	PageSize int
	Query    string
}

type ListResult struct {
	Jobs              []storage.Job `json:"jobs"`
	Page              int           `json:"page"`
	PageSize          int           `json:"pageSize"`
	Total             int           `json:"total"`
	HasMore           bool          `json:"hasMore"`
	FromCache         bool          `json:"fromCache"`
	UpworkConnected   bool          `json:"upworkConnected"`
	RequiresReconnect bool          `json:"requiresReconnect,omitempty"`
	Message           string        `json:"message,omitempty"`
	Source            string        `json:"source"`
}

// Sources reported in ListResult.Source.
const (
	SourceNone      = "none"
	SourceCache     = "cache"
	SourceUpwork    = "upwork"
	SourcePersisted = "database"
)

type Service struct {
	tokens    TokenSource
	fetcher   Fetcher
	cache     *jobcache.Cache
	store     Store
	settings  SettingsSource
	alerts    Alerter
	fetchSize int
	now       func() time.Time
}

type Options struct {
	Tokens    TokenSource
	Fetcher   Fetcher
	Cache     *jobcache.Cache
	Store     Store
	Settings  SettingsSource
	Alerts    Alerter
	FetchSize int
}

func NewService(opts Options) *Service {
	if opts.FetchSize <= 0 {
		opts.FetchSize = 50
	}
	if opts.Cache == nil {
		opts.Cache = jobcache.New(5*time.Minute, nil)
	}
	return &Service{
		tokens:    opts.Tokens,
		fetcher:   opts.Fetcher,
		cache:     opts.Cache,
		store:     opts.Store,
		settings:  opts.Settings,
		alerts:    opts.Alerts,
		fetchSize: opts.FetchSize,
		now:       time.Now,
	}
}

// List never fails for expected conditions (not connected, expired token, upstream outage);
// those come back as a result with a message. The error is reserved for unexpected failures.
//
// Upstream pages of fetchSize jobs are loaded on demand until the requested window is
// covered, so later pages stay reachable. Total counts the jobs matching locally plus the
// upstream results not loaded yet, and HasMore is page*pageSize < Total.
func (s *Service) List(ctx context.Context, userID string, req ListRequest) (*ListResult, error) {
	req = normalize(req)
	res := &ListResult{Jobs: []storage.Job{}, Page: req.Page, PageSize: req.PageSize, Source: SourceNone}

	status, err := s.tokens.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Connected {
		res.Message = MsgNotConnected
		return res, nil
	}
	res.UpworkConnected = true

	cfg := s.userSettings(ctx, userID)
	prefs := cfg.ValidationRules.Preferences()
	query := jobcache.Query{Keywords: strings.TrimSpace(cfg.ValidationRules.SearchKeywords), Term: req.Query}

	listing, cached := s.cache.Listing(userID, query.Keywords)
	if cached && !needsMore(listing, query, prefs, req) {
		log.Printf("[JobService] Cache hit for user %s (%d jobs)", userID, len(listing.Jobs))
		res.FromCache = true
		res.Source = SourceCache
		page(res, listing, query, prefs)
		return res, nil
	}
	if !cached {
		listing = jobcache.Listing{Keywords: query.Keywords}
	}

	token, err := s.tokens.AccessToken(ctx, userID)
	if err != nil {
		if cached {
			return s.partial(res, listing, query, prefs, err, ""), nil
		}
		return s.degraded(ctx, userID, res, query, prefs, err, "")
	}

	fetched, refreshed := 0, false
	for fetched < maxFetchPages && needsMore(listing, query, prefs, req) {
		fetchReq := upwork.PageRequest{Page: listing.Pages + 1, PageSize: s.fetchSize, Query: query.Keywords}
		batch := s.fetcher.FetchJobs(ctx, token, fetchReq)
		if errors.Is(batch.Err, upwork.ErrUnauthorized) && !refreshed {
			log.Printf("[JobService] Upwork answered 401 for user %s, refreshing token once", userID)
			refreshed = true
			if token, err = s.tokens.ForceRefresh(ctx, userID); err != nil {
				batch = upwork.JobBatch{Err: err}
			} else {
				batch = s.fetcher.FetchJobs(ctx, token, fetchReq)
			}
		}
		if !batch.OK() {
			if fetched > 0 || cached {
				if fetched > 0 {
					s.cache.Put(userID, listing)
				}
				return s.partial(res, listing, query, prefs, batch.Err, batch.Reason), nil
			}
			return s.degraded(ctx, userID, res, query, prefs, batch.Err, batch.Reason)
		}
		fetched++
		listing = extend(listing, batch, s.fetchSize)
		s.persist(ctx, userID, batch.Jobs)
	}

	s.cache.Put(userID, listing)
	res.Source = SourceUpwork
	page(res, listing, query, prefs)
	return res, nil
}

// Get returns a job the user has seen, from the cache or the persisted rows.
func (s *Service) Get(ctx context.Context, userID, jobID string) (*storage.Job, error) {
	if job, ok := s.cache.Lookup(userID, jobID); ok {
		return &job, nil
	}
	return s.store.GetJob(ctx, userID, jobID)
}

// ClearCache forces the next listing to go upstream.
func (s *Service) ClearCache(userID string) {
	s.cache.Invalidate(userID)
	log.Printf("[JobService] Cache cleared for user %s", userID)
}

// degraded answers with persisted jobs (no older than a day) after an upstream or token failure.
func (s *Service) degraded(ctx context.Context, userID string, res *ListResult, q jobcache.Query, prefs upwork.Preferences, cause error, reason string) (*ListResult, error) {
	if !explain(res, cause, reason) {
		return res, nil
	}
	log.Printf("[JobService] Degraded listing for user %s: %v", userID, cause)

	saved, err := s.savedJobs(ctx, userID, q)
	if err != nil {
		log.Printf("[JobService] Could not load persisted jobs: %v", err)
	}
	if len(saved) == 0 {
		if !res.RequiresReconnect {
			res.Message += ". " + MsgNoJobs
		}
		return res, nil
	}
	res.Source = SourcePersisted
	if !res.RequiresReconnect {
		res.Message += ". " + MsgSavedJobs
	}
	paginate(res, upwork.Filter(saved, prefs))
	return res, nil
}

// partial serves the pages loaded so far when loading further pages failed.
func (s *Service) partial(res *ListResult, l jobcache.Listing, q jobcache.Query, prefs upwork.Preferences, cause error, reason string) *ListResult {
	log.Printf("[JobService] Serving %d loaded jobs, further pages unavailable: %v", len(l.Jobs), cause)
	if !explain(res, cause, reason) {
		return res
	}
	res.Source = SourceCache
	res.FromCache = true
	page(res, l, q, prefs)
	return res
}

// explain sets the flags and message for a failed token or fetch. It returns false
// when the account turned out not to be connected.
func explain(res *ListResult, cause error, reason string) bool {
	switch {
	case errors.Is(cause, apperr.ErrRequiresReconnect), errors.Is(cause, upwork.ErrUnauthorized):
		res.RequiresReconnect = true
		res.Message = MsgReconnect
	case errors.Is(cause, upwork.ErrNotConnected):
		res.UpworkConnected = false
		res.Message = MsgNotConnected
		return false
	case reason != "":
		res.Message = reason
	default:
		res.Message = "Upwork is temporarily unavailable"
	}
	return true
}

// savedJobs reads the persisted fallback. A search term goes through the database full-text search.
func (s *Service) savedJobs(ctx context.Context, userID string, q jobcache.Query) ([]storage.Job, error) {
	since := s.now().Add(-persistedMaxAge)
	if term := strings.TrimSpace(q.Term); term != "" {
		return s.store.SearchJobs(ctx, userID, term, since, persistedLimit)
	}
	return s.store.ListJobs(ctx, userID, since, persistedLimit)
}

// persist stores fetched jobs and alerts on the ones not seen before. Failures are logged only.
func (s *Service) persist(ctx context.Context, userID string, fetched []storage.Job) {
	if len(fetched) == 0 {
		return
	}
	inserted, err := s.store.UpsertJobs(ctx, userID, fetched)
	if err != nil {
		log.Printf("[JobService] Failed to persist %d jobs: %v", len(fetched), err)
	}
	if s.alerts == nil || len(inserted) == 0 {
		return
	}
	fresh := make(map[string]bool, len(inserted))
	for _, id := range inserted {
		fresh[id] = true
	}
	var out []storage.Job
	for _, j := range fetched {
		if fresh[j.ID] {
			out = append(out, j)
		}
	}
	s.alerts.AlertJobs(out)
}

func (s *Service) userSettings(ctx context.Context, userID string) settings.Settings {
	if s.settings == nil {
		return settings.Defaults("")
	}
	cfg, err := s.settings.Get(ctx, userID)
	if err != nil {
		log.Printf("[JobService] Settings unavailable for user %s: %v", userID, err)
		return settings.Defaults("")
	}
	return cfg
}

func normalize(req ListRequest) ListRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	return req
}

// needsMore reports whether the requested window goes past the loaded jobs while
// upstream still has results. Nothing loaded yet always needs a fetch.
func needsMore(l jobcache.Listing, q jobcache.Query, prefs upwork.Preferences, req ListRequest) bool {
	if l.Total == 0 && len(l.Jobs) == 0 {
		return l.Pages == 0
	}
	if len(l.Jobs) >= l.Total {
		return false
	}
	return len(upwork.Filter(q.Apply(l.Jobs), prefs)) < req.Page*req.PageSize
}

// extend appends a fetched page, skipping ids already loaded.
func extend(l jobcache.Listing, batch upwork.JobBatch, fetchSize int) jobcache.Listing {
	seen := make(map[string]bool, len(l.Jobs))
	for _, j := range l.Jobs {
		seen[j.ID] = true
	}
	for _, j := range batch.Jobs {
		if !seen[j.ID] {
			seen[j.ID] = true
			l.Jobs = append(l.Jobs, j)
		}
	}
	l.Pages++
	l.Total = batch.TotalCount
	if len(batch.Jobs) == 0 || len(batch.Jobs) < fetchSize && !batch.HasMore {
		// Empty or short last page: whatever upstream claimed, nothing follows.
		l.Total = len(l.Jobs)
	}
	if l.Total < len(l.Jobs) {
		l.Total = len(l.Jobs)
	}
	return l
}

// page fills res with the requested window of the listing's matching jobs.
func page(res *ListResult, l jobcache.Listing, q jobcache.Query, prefs upwork.Preferences) {
	paginate(res, upwork.Filter(q.Apply(l.Jobs), prefs))
	if remaining := l.Total - len(l.Jobs); remaining > 0 {
		res.Total += remaining
		res.HasMore = res.Page*res.PageSize < res.Total
	}
}

func paginate(res *ListResult, all []storage.Job) {
	res.Total = len(all)
	start := (res.Page - 1) * res.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + res.PageSize
	if end > len(all) {
		end = len(all)
	}
	res.Jobs = append([]storage.Job{}, all[start:end]...)
	res.HasMore = res.Page*res.PageSize < res.Total
}
