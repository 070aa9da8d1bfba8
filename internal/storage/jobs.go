package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// UpsertJobs caches fetched jobs for a user. Duplicate ids update the stored payload.
// It returns the ids that were not stored before this call.
func (db *DB) UpsertJobs(ctx context.Context, userID string, jobs []Job) ([]string, error) {
	query := `INSERT INTO jobs (user_id, job_id, title, payload, fetched_at)
              VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (user_id, job_id) DO UPDATE
                SET title = EXCLUDED.title,
                    payload = EXCLUDED.payload,
                    fetched_at = EXCLUDED.fetched_at
              RETURNING (xmax = 0) AS inserted`

	now := time.Now().UTC()
	var inserted []string
	for _, job := range jobs {
		payload, err := json.Marshal(job)
		if err != nil {
			return inserted, fmt.Errorf("encode job %s: %w", job.ID, err)
		}
		var isNew bool
		if err := db.connection.QueryRowContext(ctx, query, userID, job.ID, job.Title, payload, now).Scan(&isNew); err != nil {
			return inserted, wrap("upsert job", err)
		}
		if isNew {
			inserted = append(inserted, job.ID)
		}
	}
	return inserted, nil
}

// ListJobs returns the user's cached jobs fetched after since, newest first.
func (db *DB) ListJobs(ctx context.Context, userID string, since time.Time, limit int) ([]Job, error) {
	rows, err := db.connection.QueryContext(ctx, `
		SELECT payload FROM jobs
		WHERE user_id = $1 AND fetched_at > $2
		ORDER BY fetched_at DESC
		LIMIT $3`, userID, since, limit)
	if err != nil {
		return nil, wrap("list jobs", err)
	}
	return scanJobs(rows)
}

// scanJobs decodes payload rows. Payloads that no longer decode are skipped.
func scanJobs(rows *sql.Rows) ([]Job, error) {
	defer rows.Close()

	var res []Job
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, wrap("scan job", err)
		}
		var job Job
		if err := json.Unmarshal(payload, &job); err != nil {
			continue
		}
		res = append(res, job)
	}
	return res, wrap("list jobs", rows.Err())
}

func (db *DB) GetJob(ctx context.Context, userID, jobID string) (*Job, error) {
	var payload []byte
	err := db.connection.QueryRowContext(ctx, `SELECT payload FROM jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID).
		Scan(&payload)
	if err != nil {
		return nil, wrap("get job", err)
	}
	job := &Job{}
	if err := json.Unmarshal(payload, job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return job, nil
}
