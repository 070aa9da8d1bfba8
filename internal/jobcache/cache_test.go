package jobcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/storage"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newCache() (*Cache, *clock) {
	clk := &clock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	return New(5*time.Minute, clk.Now), clk
}

var jobs = []storage.Job{
	{ID: "1", Title: "Go backend", Description: "REST API", Skills: []string{"Golang"}},
	{ID: "2", Title: "Landing page", Description: "React + Tailwind", Skills: []string{"React"}},
}

func TestCache_RoundTripWithinTTL(t *testing.T) {
	c, clk := newCache()
	c.Put("u1", Listing{Jobs: jobs})

	clk.Advance(4*time.Minute + 59*time.Second)
	got, ok := c.Get("u1", Query{})
	require.True(t, ok)
	assert.Equal(t, jobs, got)
}

func TestCache_MissAfterTTL(t *testing.T) {
	c, clk := newCache()
	c.Put("u1", Listing{Jobs: jobs})

	clk.Advance(5 * time.Minute)
	_, ok := c.Get("u1", Query{})
	assert.False(t, ok)

	_, ok = c.Lookup("u1", "1")
	assert.False(t, ok)
}

func TestCache_UserScoped(t *testing.T) {
	c, _ := newCache()
	c.Put("u1", Listing{Jobs: jobs})

	_, ok := c.Get("u2", Query{})
	assert.False(t, ok)
}

func TestCache_QueryTerm(t *testing.T) {
	c, _ := newCache()
	c.Put("u1", Listing{Jobs: jobs})

	got, ok := c.Get("u1", Query{Term: "golang"})
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got, ok = c.Get("u1", Query{Term: "tailwind"})
	require.True(t, ok)
	assert.Equal(t, "2", got[0].ID)

	got, ok = c.Get("u1", Query{Term: "rust"})
	assert.True(t, ok, "a fresh entry is a hit even when nothing matches")
	assert.Empty(t, got)
}

func TestCache_Lookup(t *testing.T) {
	c, _ := newCache()
	c.Put("u1", Listing{Jobs: jobs})

	j, ok := c.Lookup("u1", "2")
	require.True(t, ok)
	assert.Equal(t, "Landing page", j.Title)

	_, ok = c.Lookup("u1", "404")
	assert.False(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newCache()
	c.Put("u1", Listing{Jobs: jobs})
	c.Put("u2", Listing{Jobs: jobs})

	c.Invalidate("u1")
	_, ok := c.Get("u1", Query{})
	assert.False(t, ok)
	_, ok = c.Get("u2", Query{})
	assert.True(t, ok)

	c.InvalidateAll()
	assert.Zero(t, c.Len())
}

func TestCache_CleanExpired(t *testing.T) {
	c, clk := newCache()
	c.Put("old", Listing{Jobs: jobs})
	clk.Advance(3 * time.Minute)
	c.Put("new", Listing{Jobs: jobs})
	clk.Advance(3 * time.Minute)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("new", Query{})
	assert.True(t, ok)
}

func TestCache_PutCopiesInput(t *testing.T) {
	c, _ := newCache()
	in := []storage.Job{{ID: "a", Title: "A"}}
	c.Put("u1", Listing{Jobs: in})
	in[0].Title = "mutated"

	got, _ := c.Get("u1", Query{})
	assert.Equal(t, "A", got[0].Title)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _ := newCache()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Put("u1", Listing{Jobs: jobs})
		}()
		go func() {
			defer wg.Done()
			c.Get("u1", Query{Term: "go"})
		}()
	}
	wg.Wait()
	got, ok := c.Get("u1", Query{})
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestCache_KeywordsSelectEntry(t *testing.T) {
	c, _ := newCache()
	c.Put("u1", Listing{Keywords: "golang", Jobs: jobs, Total: 120})

	_, ok := c.Get("u1", Query{Keywords: "rust"})
	assert.False(t, ok, "an entry from another upstream search is a miss")
	_, ok = c.Listing("u1", "")
	assert.False(t, ok)

	got, ok := c.Get("u1", Query{Keywords: "golang", Term: "react"})
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	l, ok := c.Listing("u1", "golang")
	require.True(t, ok)
	assert.Equal(t, 120, l.Total)
	l.Jobs[0].Title = "mutated"
	again, _ := c.Listing("u1", "golang")
	assert.Equal(t, "Go backend", again.Jobs[0].Title)
}

func TestCache_TotalNeverBelowStoredJobs(t *testing.T) {
	c, _ := newCache()
	c.Put("u1", Listing{Jobs: jobs, Total: 0})

	l, ok := c.Listing("u1", "")
	require.True(t, ok)
	assert.Equal(t, len(jobs), l.Total)
}
