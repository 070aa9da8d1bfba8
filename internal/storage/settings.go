package storage

import (
	"context"
	"time"
)

func (db *DB) GetPromptSettings(ctx context.Context, userID string) (*PromptSettings, error) {
	s := &PromptSettings{}
	var basic, rules, templates, ai []byte
	err := db.connection.QueryRowContext(ctx, `
		SELECT user_id, basic_info, validation_rules, proposal_templates, ai_settings, updated_at
		FROM prompt_settings WHERE user_id = $1`, userID).
		Scan(&s.UserID, &basic, &rules, &templates, &ai, &s.UpdatedAt)
	if err != nil {
		return nil, wrap("get prompt settings", err)
	}
	s.BasicInfo, s.ValidationRules, s.ProposalTemplates, s.AISettings = basic, rules, templates, ai
	return s, nil
}

// UpsertPromptSettings writes the blobs that are non-nil and keeps the others.
func (db *DB) UpsertPromptSettings(ctx context.Context, s *PromptSettings) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := db.connection.ExecContext(ctx, `
		INSERT INTO prompt_settings (user_id, basic_info, validation_rules, proposal_templates, ai_settings, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		  SET basic_info = COALESCE(EXCLUDED.basic_info, prompt_settings.basic_info),
		      validation_rules = COALESCE(EXCLUDED.validation_rules, prompt_settings.validation_rules),
		      proposal_templates = COALESCE(EXCLUDED.proposal_templates, prompt_settings.proposal_templates),
		      ai_settings = COALESCE(EXCLUDED.ai_settings, prompt_settings.ai_settings),
		      updated_at = EXCLUDED.updated_at`,
		s.UserID, nullJSON(s.BasicInfo), nullJSON(s.ValidationRules), nullJSON(s.ProposalTemplates), nullJSON(s.AISettings), s.UpdatedAt)
	return wrap("upsert prompt settings", err)
}

func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
