package proposal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/settings"
	"upwork-proposals/internal/storage"
)

// Store is the persistence the lifecycle needs.
type Store interface {
	GetProposal(ctx context.Context, userID, jobID string) (*storage.Proposal, error)
	UpsertProposal(ctx context.Context, p *storage.Proposal) (bool, error)
	ListProposals(ctx context.Context, userID string, limit int) ([]storage.Proposal, error)
	ListProposalEdits(ctx context.Context, userID string, limit int) ([]storage.ProposalEdit, error)
}

// SettingsSource loads the merged prompt settings of a user.
type SettingsSource interface {
	Get(ctx context.Context, userID string) (settings.Settings, error)
}

// JobSource resolves a job id to the job the user was shown.
type JobSource interface {
	Get(ctx context.Context, userID, jobID string) (*storage.Job, error)
}

// Submitter posts proposal text upstream. Failures are advisory.
type Submitter interface {
	Submit(ctx context.Context, userID, jobID, text string) (string, error)
}

// EditSink receives edit records for asynchronous storage. It must not block.
type EditSink interface {
	RecordEdit(edit storage.ProposalEdit)
}

type GenerateResult struct {
	Proposal *storage.Proposal `json:"proposal"`
	Draft    Draft             `json:"draft"`
	Fallback bool              `json:"fallback"`
	// Persisted is false when the draft could not be stored; the text is still usable.
	Persisted bool `json:"persisted"`
}

type SaveResult struct {
	ID      string                 `json:"id"`
	Created bool                   `json:"created"`
	Status  storage.ProposalStatus `json:"status"`
}

type SendResult struct {
	ID     string     `json:"id"`
	SentAt *time.Time `json:"sentAt"`
	// Submitted reports whether the upstream submission went through.
	Submitted    bool   `json:"submitted"`
	SubmissionID string `json:"submissionId,omitempty"`
	Message      string `json:"message,omitempty"`
}

type Service struct {
	store     Store
	settings  SettingsSource
	jobs      JobSource
	generator *Generator
	submitter Submitter
	edits     EditSink
	now       func() time.Time
}

type Options struct {
	Store     Store
	Settings  SettingsSource
	Jobs      JobSource
	Generator *Generator
	Submitter Submitter
	Edits     EditSink
}

func NewService(opts Options) *Service {
	gen := opts.Generator
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Service{
		store:     opts.Store,
		settings:  opts.Settings,
		jobs:      opts.Jobs,
		generator: gen,
		submitter: opts.Submitter,
		edits:     opts.Edits,
		now:       time.Now,
	}
}

// Generate drafts a proposal for the job and upserts the (user, job) row with it.
// job may be nil, in which case it is looked up by id.
func (s *Service) Generate(ctx context.Context, userID, jobID string, job *storage.Job) (*GenerateResult, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" && job != nil {
		jobID = job.ID
	}
	if jobID == "" {
		return nil, fmt.Errorf("jobId is required: %w", apperr.ErrValidation)
	}

	existing, err := s.existing(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == storage.StatusSent {
		return nil, fmt.Errorf("proposal for job %s was already sent: %w", jobID, ErrInvalidTransition)
	}

	if job == nil {
		if s.jobs == nil {
			return nil, fmt.Errorf("job %s: %w", jobID, apperr.ErrNotFound)
		}
		if job, err = s.jobs.Get(ctx, userID, jobID); err != nil {
			return nil, err
		}
	}
	job.ID = jobID

	cfg, err := s.settings.Get(ctx, userID)
	if err != nil {
		log.Printf("[ProposalService] Settings unavailable for user %s, using defaults: %v", userID, err)
		cfg = settings.Defaults("")
	}

	draft := s.generator.Generate(ctx, *job, cfg, s.hints(ctx, userID))

	p := &storage.Proposal{
		UserID:            userID,
		JobID:             jobID,
		JobTitle:          job.Title,
		GeneratedProposal: draft.Text,
		Status:            draft.Status,
		TemplateUsed:      draft.TemplateUsed,
		ModelUsed:         draft.ModelUsed,
	}
	res := &GenerateResult{Proposal: p, Draft: draft, Fallback: draft.Status == storage.StatusGeneratedFallback}
	if _, err := s.store.UpsertProposal(ctx, p); err != nil {
		log.Printf("[ProposalService] Failed to store draft for job %s: %v", jobID, err)
		return res, nil
	}
	res.Persisted = true
	return res, nil
}

// Save stores the user's text under status (saved when empty). It is idempotent per (user, job).
func (s *Service) Save(ctx context.Context, userID, jobID, text string, status storage.ProposalStatus) (*SaveResult, error) {
	if status == "" {
		status = storage.StatusSaved
	}
	if status == storage.StatusSent {
		return nil, fmt.Errorf("use send to mark a proposal sent: %w", apperr.ErrValidation)
	}
	if err := requireInput(jobID, text); err != nil {
		return nil, err
	}

	existing, err := s.existing(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(statusOf(existing), status); err != nil {
		return nil, err
	}

	p := &storage.Proposal{UserID: userID, JobID: jobID, EditedProposal: text, Status: status}
	if existing == nil && (status == storage.StatusGenerated || status == storage.StatusGeneratedFallback) {
		p.GeneratedProposal = text
	}
	created, err := s.store.UpsertProposal(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("save proposal: %w", err)
	}
	s.recordEdit(userID, p.ID, jobID, existing, text)
	return &SaveResult{ID: p.ID, Created: created, Status: status}, nil
}

// Send submits the text upstream and marks the row sent whatever the outcome of the submission.
func (s *Service) Send(ctx context.Context, userID, jobID, text string) (*SendResult, error) {
	if err := requireInput(jobID, text); err != nil {
		return nil, err
	}
	existing, err := s.existing(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	res := &SendResult{}
	if s.submitter != nil {
		id, err := s.submitter.Submit(ctx, userID, jobID, text)
		if err != nil {
			log.Printf("[ProposalService] Upwork submission failed for job %s (marking sent anyway): %v", jobID, err)
			res.Message = "Saved as sent. Submitting to Upwork failed, please paste it there manually."
		} else {
			res.Submitted, res.SubmissionID = true, id
		}
	} else {
		res.Message = "Saved as sent. Submit it on Upwork manually."
	}

	now := s.now().UTC()
	p := &storage.Proposal{UserID: userID, JobID: jobID, EditedProposal: text, Status: storage.StatusSent, SentAt: &now}
	if _, err := s.store.UpsertProposal(ctx, p); err != nil {
		return nil, fmt.Errorf("mark proposal sent: %w", err)
	}
	s.recordEdit(userID, p.ID, jobID, existing, text)
	res.ID, res.SentAt = p.ID, p.SentAt
	return res, nil
}

// History lists the user's proposals, most recently updated first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]storage.Proposal, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListProposals(ctx, userID, limit)
}

func (s *Service) existing(ctx context.Context, userID, jobID string) (*storage.Proposal, error) {
	p, err := s.store.GetProposal(ctx, userID, jobID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	return p, nil
}

// hints returns distinct edit patterns from the user's latest edits.
func (s *Service) hints(ctx context.Context, userID string) []string {
	edits, err := s.store.ListProposalEdits(ctx, userID, maxEditHints)
	if err != nil {
		log.Printf("[ProposalService] Could not load edit hints: %v", err)
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, e := range edits {
		for _, p := range e.Patterns {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	if len(out) > maxEditHints {
		out = out[:maxEditHints]
	}
	return out
}

func (s *Service) recordEdit(userID, proposalID, jobID string, existing *storage.Proposal, text string) {
	if s.edits == nil || existing == nil || existing.GeneratedProposal == "" {
		return
	}
	if strings.TrimSpace(existing.GeneratedProposal) == strings.TrimSpace(text) {
		return
	}
	s.edits.RecordEdit(storage.ProposalEdit{
		UserID:       userID,
		JobID:        jobID,
		ProposalID:   proposalID,
		OriginalText: existing.GeneratedProposal,
		EditedText:   text,
		Patterns:     DetectPatterns(existing.GeneratedProposal, text),
		CreatedAt:    s.now().UTC(),
	})
}

func statusOf(p *storage.Proposal) storage.ProposalStatus {
	if p == nil {
		return storage.StatusDraft
	}
	return p.Status
}

func requireInput(jobID, text string) error {
	if strings.TrimSpace(jobID) == "" {
		return fmt.Errorf("jobId is required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("proposal text is required: %w", apperr.ErrValidation)
	}
	return nil
}
