// Package proposal drafts proposals for jobs and tracks each one through its lifecycle.
package proposal

import (
	"fmt"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/storage"
)

// ErrInvalidTransition is returned when a proposal cannot move to the requested status.
var ErrInvalidTransition = fmt.Errorf("invalid proposal status transition: %w", apperr.ErrConflict)

var transitions = map[storage.ProposalStatus][]storage.ProposalStatus{
	storage.StatusDraft:             {storage.StatusGenerated, storage.StatusGeneratedFallback, storage.StatusSaved, storage.StatusSent},
	storage.StatusGenerated:         {storage.StatusGenerated, storage.StatusGeneratedFallback, storage.StatusSaved, storage.StatusSent},
	storage.StatusGeneratedFallback: {storage.StatusGenerated, storage.StatusGeneratedFallback, storage.StatusSaved, storage.StatusSent},
	storage.StatusSaved:             {storage.StatusGenerated, storage.StatusGeneratedFallback, storage.StatusSaved, storage.StatusSent},
	storage.StatusSent:              {storage.StatusSent},
}

// ParseStatus accepts only the known statuses.
func ParseStatus(s string) (storage.ProposalStatus, error) {
	st := storage.ProposalStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown status %q: %w", s, apperr.ErrValidation)
	}
	return st, nil
}

// CanTransition reports whether from may move to to. An empty from is a row that does not exist yet.
func CanTransition(from, to storage.ProposalStatus) bool {
	if from == "" {
		from = storage.StatusDraft
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to storage.ProposalStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}
