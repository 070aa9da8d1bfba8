package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const proposalColumns = `id, user_id, job_id, job_title, generated_proposal, edited_proposal, status,
	template_used, model_used, sent_at, created_at, updated_at`

func scanProposal(scan func(dest ...any) error) (*Proposal, error) {
	p := &Proposal{}
	err := scan(&p.ID, &p.UserID, &p.JobID, &p.JobTitle, &p.GeneratedProposal, &p.EditedProposal, &p.Status,
		&p.TemplateUsed, &p.ModelUsed, &p.SentAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (db *DB) GetProposal(ctx context.Context, userID, jobID string) (*Proposal, error) {
	row := db.connection.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	p, err := scanProposal(row.Scan)
	if err != nil {
		return nil, wrap("get proposal", err)
	}
	return p, nil
}

// UpsertProposal writes the (user, job) row. Empty text fields keep their stored value,
// so a regenerated draft leaves the user's edit alone. sent_at keeps the first send time. It reports whether a new row was created.
func (db *DB) UpsertProposal(ctx context.Context, p *Proposal) (bool, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	var inserted bool
	err := db.connection.QueryRowContext(ctx, `
		INSERT INTO proposals (id, user_id, job_id, job_title, generated_proposal, edited_proposal, status,
		                       template_used, model_used, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (user_id, job_id) DO UPDATE
		  SET job_title = CASE WHEN EXCLUDED.job_title = '' THEN proposals.job_title ELSE EXCLUDED.job_title END,
		      generated_proposal = CASE WHEN EXCLUDED.generated_proposal = '' THEN proposals.generated_proposal ELSE EXCLUDED.generated_proposal END,
		      edited_proposal = CASE WHEN EXCLUDED.edited_proposal = '' THEN proposals.edited_proposal ELSE EXCLUDED.edited_proposal END,
		      status = EXCLUDED.status,
		      template_used = CASE WHEN EXCLUDED.template_used = '' THEN proposals.template_used ELSE EXCLUDED.template_used END,
		      model_used = CASE WHEN EXCLUDED.model_used = '' THEN proposals.model_used ELSE EXCLUDED.model_used END,
		      sent_at = COALESCE(proposals.sent_at, EXCLUDED.sent_at),
		      updated_at = EXCLUDED.updated_at
		RETURNING id, sent_at, created_at, updated_at, (xmax = 0) AS inserted`,
		p.ID, p.UserID, p.JobID, p.JobTitle, p.GeneratedProposal, p.EditedProposal, p.Status,
		p.TemplateUsed, p.ModelUsed, p.SentAt, now,
	).Scan(&p.ID, &p.SentAt, &p.CreatedAt, &p.UpdatedAt, &inserted)
	if err != nil {
		return false, wrap("upsert proposal", err)
	}
	return inserted, nil
}

// ListProposals returns the user's proposals, most recently updated first.
func (db *DB) ListProposals(ctx context.Context, userID string, limit int) ([]Proposal, error) {
	rows, err := db.connection.QueryContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, wrap("list proposals", err)
	}
	defer rows.Close()

	res := []Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows.Scan)
		if err != nil {
			return nil, wrap("scan proposal", err)
		}
		res = append(res, *p)
	}
	return res, wrap("list proposals", rows.Err())
}

func (db *DB) InsertProposalEdit(ctx context.Context, e *ProposalEdit) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := db.connection.ExecContext(ctx, `
		INSERT INTO proposal_edits (id, user_id, job_id, proposal_id, original_text, edited_text, patterns, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.JobID, e.ProposalID, e.OriginalText, e.EditedText, pq.Array(e.Patterns), e.CreatedAt)
	return wrap("insert proposal edit", err)
}

// ListProposalEdits returns the latest edits, newest first.
func (db *DB) ListProposalEdits(ctx context.Context, userID string, limit int) ([]ProposalEdit, error) {
	rows, err := db.connection.QueryContext(ctx, `
		SELECT id, user_id, job_id, proposal_id, original_text, edited_text, patterns, created_at
		FROM proposal_edits WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, wrap("list proposal edits", err)
	}
	defer rows.Close()

	var res []ProposalEdit
	for rows.Next() {
		var e ProposalEdit
		if err := rows.Scan(&e.ID, &e.UserID, &e.JobID, &e.ProposalID, &e.OriginalText, &e.EditedText,
			pq.Array(&e.Patterns), &e.CreatedAt); err != nil {
			return nil, wrap("scan proposal edit", err)
		}
		res = append(res, e)
	}
	return res, wrap("list proposal edits", rows.Err())
}
