// Package jobcache keeps the last fetched job list per user in memory.
// Entries are process-local: two server instances do not share them.
package jobcache

import (
	"strings"
	"sync"
	"time"

	"upwork-proposals/internal/storage"
)

// Query selects a cached list. Keywords must equal the upstream search the entry
// was fetched with; Term narrows it locally and matches everything when empty.
type Query struct {
	Keywords string
	Term     string
}

// Listing is what one upstream search produced so far: the leading jobs in
// upstream order and the result count upstream reported.
type Listing struct {
	Keywords string
	Jobs     []storage.Job
	Total    int
	// Pages is how many upstream pages were loaded into Jobs.
	Pages int
}

type entry struct {
	listing   Listing
	fetchedAt time.Time
}

// Cache provides user-scoped TTL caching of job listings
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache with the given TTL. now may be nil (time.Now).
func New(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the user's cached jobs matching q while the entry is younger than the TTL.
func (c *Cache) Get(userID string, q Query) ([]storage.Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || !c.fresh(e) || e.listing.Keywords != q.Keywords {
		return nil, false
	}
	return q.Apply(e.listing.Jobs), true
}

// Listing returns a copy of the user's fresh entry fetched with keywords.
func (c *Cache) Listing(userID, keywords string) (Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || !c.fresh(e) || e.listing.Keywords != keywords {
		return Listing{}, false
	}
	l := e.listing
	l.Jobs = append([]storage.Job(nil), e.listing.Jobs...)
	return l, true
}

// Put replaces the user's entry. Total is raised to len(Jobs) when upstream under-reported it.
func (c *Cache) Put(userID string, l Listing) {
	stored := make([]storage.Job, len(l.Jobs))
	copy(stored, l.Jobs)
	l.Jobs = stored
	if l.Total < len(stored) {
		l.Total = len(stored)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = &entry{listing: l, fetchedAt: c.now()}
}

// Lookup finds one job by id in the user's fresh entry.
func (c *Cache) Lookup(userID, jobID string) (storage.Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || !c.fresh(e) {
		return storage.Job{}, false
	}
	for _, j := range e.listing.Jobs {
		if j.ID == jobID {
			return j, true
		}
	}
	return storage.Job{}, false
}

// Invalidate drops the user's entry.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// InvalidateAll removes all cache entries
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// CleanExpired removes expired entries (call periodically) and returns how many were dropped.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !c.fresh(e) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len is the number of users with an entry, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) fresh(e *entry) bool {
	return c.now().Sub(e.fetchedAt) < c.ttl
}

// Apply returns the jobs matching q as a new slice.
func (q Query) Apply(jobs []storage.Job) []storage.Job {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	out := make([]storage.Job, 0, len(jobs))
	for _, j := range jobs {
		if term == "" || matches(j, term) {
			out = append(out, j)
		}
	}
	return out
}

func matches(j storage.Job, term string) bool {
	if strings.Contains(strings.ToLower(j.Title), term) || strings.Contains(strings.ToLower(j.Description), term) {
		return true
	}
	for _, s := range j.Skills {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}
