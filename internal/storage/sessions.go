package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func (db *DB) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.connection.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.Token, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return nil, wrap("create session", err)
	}
	return s, nil
}

func (db *DB) GetSessionByToken(ctx context.Context, token string) (*Session, error) {
	s := &Session{}
	err := db.connection.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM sessions WHERE token = $1`, token).
		Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, wrap("get session", err)
	}
	return s, nil
}

func (db *DB) DeleteSessionByToken(ctx context.Context, token string) error {
	_, err := db.connection.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return wrap("delete session", err)
}

// DeleteExpiredSessions removes every session past its expiry and returns how many went.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.connection.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, wrap("delete expired sessions", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
