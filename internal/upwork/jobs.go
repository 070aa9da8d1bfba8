package upwork

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/storage"
)

const jobSearchQuery = `query marketplaceJobPostingsSearch($marketPlaceJobFilter: MarketplaceJobPostingsSearchFilter, $searchType: MarketplaceJobPostingSearchType, $sortAttributes: [MarketplaceJobPostingSearchSortAttribute]) {
  marketplaceJobPostingsSearch(marketPlaceJobFilter: $marketPlaceJobFilter, searchType: $searchType, sortAttributes: $sortAttributes) {
    totalCount
    edges {
      node {
        id
        ciphertext
        title
        description
        createdDateTime
        publishedDateTime
        experienceLevel
        category
        subcategory
        totalApplicants
        amount { rawValue currency }
        hourlyBudgetMin { rawValue currency }
        hourlyBudgetMax { rawValue currency }
        skills { name prettyName }
        job { contractTerms { contractType } }
        client {
          totalHires
          totalPostedJobs
          totalSpent { rawValue }
          verificationStatus
          location { country }
          totalReviews
          totalFeedback
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// Known response locations of the job list, tried in order.
var (
	edgePaths = []string{
		"marketplaceJobPostingsSearch.edges",
		"marketplaceJobPostings.edges",
		"jobs.edges",
		"jobs",
		"search.jobs",
	}
	totalCountPaths = []string{
		"marketplaceJobPostingsSearch.totalCount",
		"marketplaceJobPostings.totalCount",
		"jobs.totalCount",
		"search.total",
	}
)

// PageRequest selects one page of search results. Page is 1-based.
type PageRequest struct {
	Page     int
	PageSize int
	Query    string
}

func (r PageRequest) normalized() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
	r.Query = strings.TrimSpace(r.Query)
	return r
}

// JobBatch is the outcome of one fetch. Reason is empty on success; otherwise it
// explains the failure and Err holds the classified cause.
type JobBatch struct {
	Jobs       []storage.Job `json:"jobs"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalCount int           `json:"totalCount"`
	HasMore    bool          `json:"hasMore"`
	Reason     string        `json:"reason,omitempty"`
	Err        error         `json:"-"`
}

// OK reports whether the fetch succeeded.
func (b JobBatch) OK() bool { return b.Err == nil }

// Fetcher retrieves job postings from the marketplace API.
type Fetcher struct {
	client  *Client
	timeout time.Duration
}

func NewFetcher(client *Client, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{client: client, timeout: timeout}
}

// FetchJobs never returns an error value: failures come back as a batch with Reason and Err set.
func (f *Fetcher) FetchJobs(ctx context.Context, accessToken string, req PageRequest) JobBatch {
	req = req.normalized()
	batch := JobBatch{Jobs: []storage.Job{}, Page: req.Page, PageSize: req.PageSize}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	filter := map[string]any{
		"pagination_eq": map[string]any{
			"after": fmt.Sprint((req.Page - 1) * req.PageSize),
			"first": req.PageSize,
		},
	}
	if req.Query != "" {
		filter["searchExpression_eq"] = req.Query
	}
	vars := map[string]any{
		"marketPlaceJobFilter": filter,
		"searchType":           "USER_JOBS_SEARCH",
		"sortAttributes":       []map[string]any{{"field": "RECENCY"}},
	}

	var data map[string]any
	start := time.Now()
	if err := f.client.Query(ctx, accessToken, jobSearchQuery, vars, &data); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrUnauthorized) {
			err = fmt.Errorf("upwork job search timed out after %s: %w", f.timeout, apperr.ErrUpstreamUnavailable)
		}
		batch.Err = err
		batch.Reason = reasonFor(err)
		log.Printf("[Fetcher] Job search failed after %v: %v", time.Since(start), err)
		return batch
	}

	nodes, ok := jobNodes(data)
	if !ok {
		batch.Err = fmt.Errorf("no job list in response: %w", apperr.ErrUpstreamSchemaMismatch)
		batch.Reason = reasonFor(batch.Err)
		log.Printf("[Fetcher] %v", batch.Err)
		return batch
	}
	batch.Jobs = NormalizeAll(nodes)

	batch.TotalCount = len(batch.Jobs) + (req.Page-1)*req.PageSize
	if total, ok := firstNumber(data, totalCountPaths); ok && int(total) >= batch.TotalCount {
		batch.TotalCount = int(total)
	}
	batch.HasMore = req.Page*req.PageSize < batch.TotalCount
	log.Printf("[Fetcher] Fetched %d jobs (page %d, total %d) in %v", len(batch.Jobs), req.Page, batch.TotalCount, time.Since(start))
	return batch
}

// jobNodes returns the job nodes at the first known location holding a list.
// Edges may wrap nodes ({"node": {...}}) or be the nodes themselves.
func jobNodes(data map[string]any) ([]map[string]any, bool) {
	for _, p := range edgePaths {
		v, ok := lookup(data, p)
		if !ok {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			continue
		}
		nodes := make([]map[string]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if inner, ok := m["node"].(map[string]any); ok {
				m = inner
			}
			nodes = append(nodes, m)
		}
		return nodes, true
	}
	return nil, false
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Upwork rejected the stored access token"
	case errors.Is(err, apperr.ErrRequiresReconnect):
		return "Upwork authorization expired, please reconnect"
	case errors.Is(err, apperr.ErrUpstreamSchemaMismatch):
		return "Upwork returned a response we could not read"
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(err.Error(), "timed out"):
		return "Upwork did not respond in time"
	default:
		return "Upwork is temporarily unavailable"
	}
}
