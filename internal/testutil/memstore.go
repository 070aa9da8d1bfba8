// Package testutil provides an in-memory stand-in for the Postgres store.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"upwork-proposals/internal/storage"
)

// ErrInjected is returned by operations listed in MemStore.Fail.
var ErrInjected = errors.New("injected failure")

// MemStore mirrors the storage.DB methods the services use, with the same
// upsert and not-found semantics.
type MemStore struct {
	mu sync.Mutex

	users     map[string]storage.User
	sessions  map[string]storage.Session
	accounts  map[string]storage.UpworkAccount
	jobs      map[string]map[string]memJob
	proposals map[string]storage.Proposal
	edits     []storage.ProposalEdit
	settings  map[string]storage.PromptSettings

	// Fail makes the named method (e.g. "UpsertProposal") return ErrInjected.
	Fail map[string]bool
	Now  func() time.Time
}

type memJob struct {
	job       storage.Job
	fetchedAt time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:     map[string]storage.User{},
		sessions:  map[string]storage.Session{},
		accounts:  map[string]storage.UpworkAccount{},
		jobs:      map[string]map[string]memJob{},
		proposals: map[string]storage.Proposal{},
		settings:  map[string]storage.PromptSettings{},
		Fail:      map[string]bool{},
		Now:       time.Now,
	}
}

func (m *MemStore) failing(op string) bool {
	return m.Fail[op]
}

func (m *MemStore) now() time.Time { return m.Now().UTC() }

func proposalKey(userID, jobID string) string { return userID + "\x00" + jobID }

// Users

func (m *MemStore) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("CountUsers") {
		return 0, ErrInjected
	}
	return len(m.users), nil
}

func (m *MemStore) CreateUser(_ context.Context, email, passwordHash, name, company string) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("CreateUser") {
		return nil, ErrInjected
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return nil, storage.ErrDuplicate
		}
	}
	u := storage.User{
		ID: uuid.NewString(), Email: email, PasswordHash: passwordHash,
		Name: name, CompanyName: company, CreatedAt: m.now(),
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

// Sessions

func (m *MemStore) CreateSession(_ context.Context, userID, token string, expiresAt time.Time) (*storage.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("CreateSession") {
		return nil, ErrInjected
	}
	s := storage.Session{ID: uuid.NewString(), UserID: userID, Token: token, ExpiresAt: expiresAt.UTC(), CreatedAt: m.now()}
	m.sessions[token] = s
	return &s, nil
}

func (m *MemStore) GetSessionByToken(_ context.Context, token string) (*storage.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (m *MemStore) DeleteSessionByToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, tok)
			n++
		}
	}
	return n, nil
}

// SessionCount is a test helper.
func (m *MemStore) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Upwork accounts

func (m *MemStore) UpsertUpworkAccount(_ context.Context, acc *storage.UpworkAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("UpsertUpworkAccount") {
		return ErrInjected
	}
	now := m.now()
	next := *acc
	if prev, ok := m.accounts[acc.UserID]; ok {
		next.CreatedAt = prev.CreatedAt
		if next.RefreshToken == "" {
			next.RefreshToken = prev.RefreshToken
		}
		if next.UpstreamAccountID == "" {
			next.UpstreamAccountID = prev.UpstreamAccountID
		}
	} else {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	m.accounts[acc.UserID] = next
	acc.CreatedAt, acc.UpdatedAt = next.CreatedAt, next.UpdatedAt
	return nil
}

func (m *MemStore) GetUpworkAccount(_ context.Context, userID string) (*storage.UpworkAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("GetUpworkAccount") {
		return nil, ErrInjected
	}
	acc, ok := m.accounts[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &acc, nil
}

func (m *MemStore) DeleteUpworkAccount(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, userID)
	return nil
}

// Jobs

func (m *MemStore) UpsertJobs(_ context.Context, userID string, jobs []storage.Job) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("UpsertJobs") {
		return nil, ErrInjected
	}
	rows := m.jobs[userID]
	if rows == nil {
		rows = map[string]memJob{}
		m.jobs[userID] = rows
	}
	now := m.now()
	var inserted []string
	for _, j := range jobs {
		if _, ok := rows[j.ID]; !ok {
			inserted = append(inserted, j.ID)
		}
		rows[j.ID] = memJob{job: j, fetchedAt: now}
	}
	return inserted, nil
}

func (m *MemStore) ListJobs(_ context.Context, userID string, since time.Time, limit int) ([]storage.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("ListJobs") {
		return nil, ErrInjected
	}
	return m.recentJobs(userID, since, limit, nil), nil
}

// SearchJobs approximates the full-text search: every word of query must prefix a word
// of the title, description or skills.
func (m *MemStore) SearchJobs(_ context.Context, userID, query string, since time.Time, limit int) ([]storage.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("SearchJobs") {
		return nil, ErrInjected
	}
	terms := strings.Fields(strings.ToLower(query))
	return m.recentJobs(userID, since, limit, func(j storage.Job) bool {
		words := strings.Fields(strings.ToLower(j.Title + " " + j.Description + " " + strings.Join(j.Skills, " ")))
		for _, t := range terms {
			found := false
			for _, w := range words {
				if strings.HasPrefix(w, t) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}), nil
}

func (m *MemStore) recentJobs(userID string, since time.Time, limit int, match func(storage.Job) bool) []storage.Job {
	var rows []memJob
	for _, r := range m.jobs[userID] {
		if r.fetchedAt.After(since) && (match == nil || match(r.job)) {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].fetchedAt.After(rows[j].fetchedAt) })
	var out []storage.Job
	for i, r := range rows {
		if limit > 0 && i >= limit {
			break
		}
		out = append(out, r.job)
	}
	return out
}

func (m *MemStore) GetJob(_ context.Context, userID, jobID string) (*storage.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.jobs[userID][jobID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	j := r.job
	return &j, nil
}

// JobCount is a test helper.
func (m *MemStore) JobCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs[userID])
}

// Proposals

func (m *MemStore) GetProposal(_ context.Context, userID, jobID string) (*storage.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[proposalKey(userID, jobID)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (m *MemStore) UpsertProposal(_ context.Context, p *storage.Proposal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("UpsertProposal") {
		return false, ErrInjected
	}
	now := m.now()
	key := proposalKey(p.UserID, p.JobID)
	prev, exists := m.proposals[key]
	next := *p
	if !exists {
		if next.ID == "" {
			next.ID = uuid.NewString()
		}
		next.CreatedAt = now
	} else {
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
		keep := func(v *string, old string) {
			if *v == "" {
				*v = old
			}
		}
		keep(&next.JobTitle, prev.JobTitle)
		keep(&next.GeneratedProposal, prev.GeneratedProposal)
		keep(&next.EditedProposal, prev.EditedProposal)
		keep(&next.TemplateUsed, prev.TemplateUsed)
		keep(&next.ModelUsed, prev.ModelUsed)
		if prev.SentAt != nil {
			next.SentAt = prev.SentAt
		}
	}
	next.UpdatedAt = now
	m.proposals[key] = next
	p.ID, p.SentAt, p.CreatedAt, p.UpdatedAt = next.ID, next.SentAt, next.CreatedAt, next.UpdatedAt
	return !exists, nil
}

func (m *MemStore) ListProposals(_ context.Context, userID string, limit int) ([]storage.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []storage.Proposal{}
	for _, p := range m.proposals {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ProposalCount is a test helper.
func (m *MemStore) ProposalCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.proposals)
}

func (m *MemStore) InsertProposalEdit(_ context.Context, e *storage.ProposalEdit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("InsertProposalEdit") {
		return ErrInjected
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now()
	}
	m.edits = append(m.edits, *e)
	return nil
}

func (m *MemStore) ListProposalEdits(_ context.Context, userID string, limit int) ([]storage.ProposalEdit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ProposalEdit
	for i := len(m.edits) - 1; i >= 0; i-- {
		if m.edits[i].UserID != userID {
			continue
		}
		out = append(out, m.edits[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Settings

func (m *MemStore) GetPromptSettings(_ context.Context, userID string) (*storage.PromptSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (m *MemStore) UpsertPromptSettings(_ context.Context, s *storage.PromptSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing("UpsertPromptSettings") {
		return ErrInjected
	}
	next := m.settings[s.UserID]
	next.UserID = s.UserID
	if len(s.BasicInfo) > 0 {
		next.BasicInfo = s.BasicInfo
	}
	if len(s.ValidationRules) > 0 {
		next.ValidationRules = s.ValidationRules
	}
	if len(s.ProposalTemplates) > 0 {
		next.ProposalTemplates = s.ProposalTemplates
	}
	if len(s.AISettings) > 0 {
		next.AISettings = s.AISettings
	}
	next.UpdatedAt = m.now()
	s.UpdatedAt = next.UpdatedAt
	m.settings[s.UserID] = next
	return nil
}
