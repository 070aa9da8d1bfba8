package upwork

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const submitProposalMutation = `mutation createProposal($input: CreateProposalInput!) {
  createProposal(input: $input) {
    id
    status
  }
}`

// Submission is the upstream acknowledgement of a proposal.
type Submission struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SubmitProposal posts the cover letter for jobID. The caller treats failures as advisory.
func (c *Client) SubmitProposal(ctx context.Context, accessToken, jobID, text string) (*Submission, error) {
	if strings.TrimSpace(jobID) == "" || strings.TrimSpace(text) == "" {
		return nil, errors.New("job id and proposal text are required")
	}
	var out struct {
		CreateProposal *Submission `json:"createProposal"`
	}
	vars := map[string]any{
		"input": map[string]any{
			"jobId":       jobID,
			"coverLetter": text,
		},
	}
	if err := c.Query(ctx, accessToken, submitProposalMutation, vars, &out); err != nil {
		return nil, err
	}
	if out.CreateProposal == nil {
		return nil, fmt.Errorf("createProposal returned nothing for job %s", jobID)
	}
	return out.CreateProposal, nil
}

// Sender submits proposals on behalf of a user, refreshing the token once on 401.
type Sender struct {
	tokens *TokenManager
	client *Client
}

func NewSender(tokens *TokenManager, client *Client) *Sender {
	return &Sender{tokens: tokens, client: client}
}

// Submit implements the proposal service's submitter.
func (s *Sender) Submit(ctx context.Context, userID, jobID, text string) (string, error) {
	token, err := s.tokens.AccessToken(ctx, userID)
	if err != nil {
		return "", err
	}
	sub, err := s.client.SubmitProposal(ctx, token, jobID, text)
	if errors.Is(err, ErrUnauthorized) {
		if token, err = s.tokens.ForceRefresh(ctx, userID); err != nil {
			return "", err
		}
		sub, err = s.client.SubmitProposal(ctx, token, jobID, text)
	}
	if err != nil {
		return "", err
	}
	return sub.ID, nil
}
