package storage

import (
	"encoding/json"
	"time"
)

// User is the single local account that owns every other row.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CompanyName  string    `json:"company_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an opaque bearer token handed to the browser as a cookie.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UpworkAccount holds the OAuth token pair for a user. One row per user.
type UpworkAccount struct {
	UserID            string     `json:"user_id"`
	AccessToken       string     `json:"-"`
	RefreshToken      string     `json:"-"`
	TokenType         string     `json:"token_type"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	UpstreamAccountID string     `json:"upstream_account_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Job is the canonical shape of a marketplace job posting.
// Note: upstream is the source of truth, rows here are a short-lived cache.
type Job struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Budget          string    `json:"budget"`
	BudgetMin       float64   `json:"budgetMin,omitempty"`
	BudgetMax       float64   `json:"budgetMax,omitempty"`
	PostedDate      string    `json:"postedDate"`
	Client          JobClient `json:"client"`
	Skills          []string  `json:"skills"`
	ProposalCount   int       `json:"proposalCount"`
	Category        string    `json:"category"`
	JobType         string    `json:"jobType"`
	ExperienceLevel string    `json:"experienceLevel"`
	URL             string    `json:"url,omitempty"`
}

// JobClient describes the client who posted a job.
type JobClient struct {
	Name            string  `json:"name"`
	Rating          float64 `json:"rating"`
	Country         string  `json:"country"`
	TotalSpent      float64 `json:"totalSpent"`
	TotalHires      int     `json:"totalHires"`
	TotalPostedJobs int     `json:"totalPostedJobs"`
	TotalReviews    int     `json:"totalReviews"`
	PaymentVerified bool    `json:"paymentVerified"`
}

// ProposalStatus is the lifecycle state of a proposal row.
type ProposalStatus string

const (
	StatusDraft             ProposalStatus = "draft"
	StatusGenerated         ProposalStatus = "generated"
	StatusGeneratedFallback ProposalStatus = "generated_fallback"
	StatusSaved             ProposalStatus = "saved"
	StatusSent              ProposalStatus = "sent"
)

// Proposal is keyed by (UserID, JobID); there is never more than one row per pair.
type Proposal struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	JobID             string         `json:"job_id"`
	JobTitle          string         `json:"job_title"`
	GeneratedProposal string         `json:"generated_proposal"`
	EditedProposal    string         `json:"edited_proposal"`
	Status            ProposalStatus `json:"status"`
	TemplateUsed      string         `json:"template_used,omitempty"`
	ModelUsed         string         `json:"model_used,omitempty"`
	SentAt            *time.Time     `json:"sent_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ProposalEdit is one append-only (original, edited) pair used as prompt hints.
type ProposalEdit struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	JobID        string    `json:"job_id"`
	ProposalID   string    `json:"proposal_id"`
	OriginalText string    `json:"original_text"`
	EditedText   string    `json:"edited_text"`
	Patterns     []string  `json:"patterns"`
	CreatedAt    time.Time `json:"created_at"`
}

// PromptSettings stores the raw per-user settings blobs. Nil blobs mean "use defaults".
type PromptSettings struct {
	UserID            string          `json:"user_id"`
	BasicInfo         json.RawMessage `json:"basic_info,omitempty"`
	ValidationRules   json.RawMessage `json:"validation_rules,omitempty"`
	ProposalTemplates json.RawMessage `json:"proposal_templates,omitempty"`
	AISettings        json.RawMessage `json:"ai_settings,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
