package storage

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// SearchJobs performs full-text search over the user's stored jobs fetched after since.
// Results are ranked with ts_rank over the weighted title/description/skills vector.
// A query with no usable words behaves like ListJobs.
func (db *DB) SearchJobs(ctx context.Context, userID, query string, since time.Time, limit int) ([]Job, error) {
	tsQuery := prepareTSQuery(query)
	if tsQuery == "" {
		return db.ListJobs(ctx, userID, since, limit)
	}

	rows, err := db.connection.QueryContext(ctx, `
		SELECT payload FROM jobs
		WHERE user_id = $1
		  AND fetched_at > $2
		  AND search_vector @@ to_tsquery('english', $3)
		ORDER BY ts_rank(search_vector, to_tsquery('english', $3)) DESC, fetched_at DESC
		LIMIT $4`, userID, since, tsQuery, limit)
	if err != nil {
		return nil, wrap("search jobs", err)
	}
	return scanJobs(rows)
}

// prepareTSQuery converts free text to a prefix-matching tsquery.
// Example: "golang api developer" -> "golang:* & api:* & developer:*"
func prepareTSQuery(query string) string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	// Single letters match too much; "go" and "ui" must survive
	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) >= 2 {
			filtered = append(filtered, w+":*")
		}
	}
	return strings.Join(filtered, " & ")
}
