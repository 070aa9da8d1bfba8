// Package settings holds the per-user prompt configuration: profile details, job
// filters, proposal templates and model parameters.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/storage"
	"upwork-proposals/internal/upwork"
)

// BasicInfo describes the freelancer writing the proposals.
type BasicInfo struct {
	Name        string   `json:"name"`
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience"`
	Portfolio   string   `json:"portfolio"`
	HourlyRate  float64  `json:"hourlyRate"`
	Description string   `json:"description,omitempty"`
}

// ValidationRules control which jobs are shown and what the upstream search asks for.
type ValidationRules struct {
	MinBudget             *float64 `json:"minBudget"`
	MaxBudget             *float64 `json:"maxBudget"`
	Categories            []string `json:"categories"`
	RequireVerifiedClient *bool    `json:"requireVerifiedClient"`
	SearchKeywords        string   `json:"searchKeywords"`
	CustomInstructions    string   `json:"customInstructions,omitempty"`
}

// Preferences converts the rules into the job filter's predicates.
func (r ValidationRules) Preferences() upwork.Preferences {
	return upwork.Preferences{
		MinBudget:             r.MinBudget,
		MaxBudget:             r.MaxBudget,
		Categories:            r.Categories,
		RequireVerifiedClient: r.RequireVerifiedClient,
	}
}

type ProposalTemplate struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type AISettings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// Settings is the merged view the UI and the generator work with.
type Settings struct {
	BasicInfo         BasicInfo          `json:"basicInfo"`
	ValidationRules   ValidationRules    `json:"validationRules"`
	ProposalTemplates []ProposalTemplate `json:"proposalTemplates"`
	AISettings        AISettings         `json:"aiSettings"`
	UpdatedAt         *time.Time         `json:"updatedAt,omitempty"`
}

// Patch replaces only the blobs that are present.
type Patch struct {
	BasicInfo         *BasicInfo          `json:"basicInfo,omitempty"`
	ValidationRules   *ValidationRules    `json:"validationRules,omitempty"`
	ProposalTemplates *[]ProposalTemplate `json:"proposalTemplates,omitempty"`
	AISettings        *AISettings         `json:"aiSettings,omitempty"`
}

const defaultTemplate = `Hi,

I read your post about {{job_title}} and it lines up well with work I have done before.

{{relevant_experience}}

For your project I would start by clarifying the scope, then deliver in small reviewed steps so you always see progress.

Happy to share examples or jump on a quick call.

Best regards,
{{name}}`

// Defaults returns the settings used when a user has stored nothing.
func Defaults(model string) Settings {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return Settings{
		BasicInfo: BasicInfo{
			Title:  "Freelance Developer",
			Skills: []string{},
		},
		ValidationRules: ValidationRules{Categories: []string{}},
		ProposalTemplates: []ProposalTemplate{
			{ID: "default", Title: "Main template", Content: defaultTemplate},
		},
		AISettings: AISettings{Model: model, Temperature: 0.7, MaxTokens: 600},
	}
}

// Store is the persistence the service needs.
type Store interface {
	GetPromptSettings(ctx context.Context, userID string) (*storage.PromptSettings, error)
	UpsertPromptSettings(ctx context.Context, s *storage.PromptSettings) error
	GetUserByID(ctx context.Context, id string) (*storage.User, error)
}

type Service struct {
	store        Store
	defaultModel string
}

func NewService(store Store, defaultModel string) *Service {
	return &Service{store: store, defaultModel: defaultModel}
}

// Get merges stored blobs over the defaults. Unreadable blobs fall back to defaults.
// An empty profile name or company is taken from the account.
func (s *Service) Get(ctx context.Context, userID string) (Settings, error) {
	out, err := s.stored(ctx, userID)
	if err != nil {
		return out, err
	}
	s.fillFromAccount(ctx, userID, &out.BasicInfo)
	return out, nil
}

func (s *Service) stored(ctx context.Context, userID string) (Settings, error) {
	out := Defaults(s.defaultModel)
	row, err := s.store.GetPromptSettings(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	merge(row.BasicInfo, &out.BasicInfo)
	merge(row.ValidationRules, &out.ValidationRules)
	merge(row.ProposalTemplates, &out.ProposalTemplates)
	merge(row.AISettings, &out.AISettings)
	if len(out.ProposalTemplates) == 0 {
		out.ProposalTemplates = Defaults(s.defaultModel).ProposalTemplates
	}
	if out.AISettings.Model == "" {
		out.AISettings.Model = Defaults(s.defaultModel).AISettings.Model
	}
	if out.BasicInfo.Skills == nil {
		out.BasicInfo.Skills = []string{}
	}
	if out.ValidationRules.Categories == nil {
		out.ValidationRules.Categories = []string{}
	}
	updated := row.UpdatedAt
	out.UpdatedAt = &updated
	return out, nil
}

func (s *Service) fillFromAccount(ctx context.Context, userID string, info *BasicInfo) {
	if strings.TrimSpace(info.Name) != "" && strings.TrimSpace(info.Company) != "" {
		return
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Printf("[Settings] Could not load account of user %s: %v", userID, err)
		}
		return
	}
	if strings.TrimSpace(info.Name) == "" {
		info.Name = user.Name
	}
	if strings.TrimSpace(info.Company) == "" {
		info.Company = user.CompanyName
	}
}

// Update validates and stores the supplied blobs, then returns the merged result.
func (s *Service) Update(ctx context.Context, userID string, p Patch) (Settings, error) {
	if err := p.Validate(); err != nil {
		return Settings{}, err
	}
	row := &storage.PromptSettings{UserID: userID}
	var err error
	if p.BasicInfo != nil {
		if row.BasicInfo, err = json.Marshal(p.BasicInfo); err != nil {
			return Settings{}, err
		}
	}
	if p.ValidationRules != nil {
		if row.ValidationRules, err = json.Marshal(p.ValidationRules); err != nil {
			return Settings{}, err
		}
	}
	if p.ProposalTemplates != nil {
		if row.ProposalTemplates, err = json.Marshal(p.ProposalTemplates); err != nil {
			return Settings{}, err
		}
	}
	if p.AISettings != nil {
		if row.AISettings, err = json.Marshal(p.AISettings); err != nil {
			return Settings{}, err
		}
	}
	if err := s.store.UpsertPromptSettings(ctx, row); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return s.Get(ctx, userID)
}

// Validate checks value ranges of the supplied blobs.
func (p Patch) Validate() error {
	if ai := p.AISettings; ai != nil {
		if ai.Temperature < 0 || ai.Temperature > 2 {
			return fmt.Errorf("temperature must be between 0 and 2: %w", apperr.ErrValidation)
		}
		if ai.MaxTokens < 50 || ai.MaxTokens > 4000 {
			return fmt.Errorf("maxTokens must be between 50 and 4000: %w", apperr.ErrValidation)
		}
	}
	if r := p.ValidationRules; r != nil {
		if r.MinBudget != nil && *r.MinBudget < 0 || r.MaxBudget != nil && *r.MaxBudget < 0 {
			return fmt.Errorf("budgets cannot be negative: %w", apperr.ErrValidation)
		}
		if r.MinBudget != nil && r.MaxBudget != nil && *r.MinBudget > *r.MaxBudget {
			return fmt.Errorf("minBudget cannot exceed maxBudget: %w", apperr.ErrValidation)
		}
	}
	if b := p.BasicInfo; b != nil && b.HourlyRate < 0 {
		return fmt.Errorf("hourlyRate cannot be negative: %w", apperr.ErrValidation)
	}
	if ts := p.ProposalTemplates; ts != nil {
		for i, t := range *ts {
			if strings.TrimSpace(t.Content) == "" {
				return fmt.Errorf("template %d has no content: %w", i+1, apperr.ErrValidation)
			}
		}
	}
	return nil
}

func merge[T any](raw json.RawMessage, dst *T) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	v := *dst
	if err := json.Unmarshal(raw, &v); err == nil {
		*dst = v
	}
}
