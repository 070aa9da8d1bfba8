package upwork

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"upwork-proposals/internal/storage"
)

// Preferences restrict which jobs are shown. A nil or empty field disables that predicate.
type Preferences struct {
	MinBudget             *float64 `json:"minBudget,omitempty"`
	MaxBudget             *float64 `json:"maxBudget,omitempty"`
	Categories            []string `json:"categories,omitempty"`
	RequireVerifiedClient *bool    `json:"requireVerifiedClient,omitempty"`
}

// IsEmpty reports whether no predicate is active.
func (p Preferences) IsEmpty() bool {
	return p.MinBudget == nil && p.MaxBudget == nil && len(p.Categories) == 0 &&
		(p.RequireVerifiedClient == nil || !*p.RequireVerifiedClient)
}

// Filter keeps jobs that satisfy every active predicate. Empty preferences return jobs unchanged.
func Filter(jobs []storage.Job, prefs Preferences) []storage.Job {
	if prefs.IsEmpty() {
		return jobs
	}
	allowed := make([]string, 0, len(prefs.Categories))
	for _, c := range prefs.Categories {
		if f := fold(c); f != "" {
			allowed = append(allowed, f)
		}
	}

	out := make([]storage.Job, 0, len(jobs))
	for _, j := range jobs {
		if !budgetMatches(j, prefs) {
			continue
		}
		if len(allowed) > 0 && !categoryMatches(j.Category, allowed) {
			continue
		}
		if prefs.RequireVerifiedClient != nil && *prefs.RequireVerifiedClient && !j.Client.PaymentVerified {
			continue
		}
		out = append(out, j)
	}
	return out
}

// budgetMatches treats a job as the range [BudgetMin, BudgetMax]; it matches when the range
// overlaps the preferred one. Unknown budgets never match an active budget predicate.
func budgetMatches(j storage.Job, p Preferences) bool {
	if p.MinBudget == nil && p.MaxBudget == nil {
		return true
	}
	if j.BudgetMin == 0 && j.BudgetMax == 0 {
		return false
	}
	hi := j.BudgetMax
	if hi == 0 {
		hi = j.BudgetMin
	}
	if p.MinBudget != nil && hi < *p.MinBudget {
		return false
	}
	if p.MaxBudget != nil && j.BudgetMin > *p.MaxBudget {
		return false
	}
	return true
}

func categoryMatches(category string, allowed []string) bool {
	c := fold(category)
	for _, a := range allowed {
		if c == a || strings.Contains(c, a) {
			return true
		}
	}
	return false
}

// fold lower-cases s and strips diacritics so "Diseño" matches "diseno".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
