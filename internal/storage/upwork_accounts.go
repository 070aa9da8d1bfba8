package storage

import (
	"context"
	"time"
)

// UpsertUpworkAccount stores the token pair for a user, replacing any previous pair.
func (db *DB) UpsertUpworkAccount(ctx context.Context, acc *UpworkAccount) error {
	now := time.Now().UTC()
	err := db.connection.QueryRowContext(ctx, `
		INSERT INTO upwork_accounts (user_id, access_token, refresh_token, token_type, expires_at, upstream_account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (user_id) DO UPDATE
		  SET access_token = EXCLUDED.access_token,
		      refresh_token = CASE WHEN EXCLUDED.refresh_token = '' THEN upwork_accounts.refresh_token ELSE EXCLUDED.refresh_token END,
		      token_type = EXCLUDED.token_type,
		      expires_at = EXCLUDED.expires_at,
		      upstream_account_id = CASE WHEN EXCLUDED.upstream_account_id = '' THEN upwork_accounts.upstream_account_id ELSE EXCLUDED.upstream_account_id END,
		      updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`,
		acc.UserID, acc.AccessToken, acc.RefreshToken, acc.TokenType, acc.ExpiresAt, acc.UpstreamAccountID, now,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	return wrap("upsert upwork account", err)
}

func (db *DB) GetUpworkAccount(ctx context.Context, userID string) (*UpworkAccount, error) {
	acc := &UpworkAccount{}
	err := db.connection.QueryRowContext(ctx, `
		SELECT user_id, access_token, refresh_token, token_type, expires_at, upstream_account_id, created_at, updated_at
		FROM upwork_accounts WHERE user_id = $1`, userID).
		Scan(&acc.UserID, &acc.AccessToken, &acc.RefreshToken, &acc.TokenType, &acc.ExpiresAt,
			&acc.UpstreamAccountID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, wrap("get upwork account", err)
	}
	return acc, nil
}

func (db *DB) DeleteUpworkAccount(ctx context.Context, userID string) error {
	_, err := db.connection.ExecContext(ctx, `DELETE FROM upwork_accounts WHERE user_id = $1`, userID)
	return wrap("delete upwork account", err)
}
