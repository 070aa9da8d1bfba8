package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CountUsers returns how many users exist. The app only ever allows one.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := db.connection.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, wrap("count users", err)
}

func (db *DB) CreateUser(ctx context.Context, email, passwordHash, name, company string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CompanyName:  company,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := db.connection.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, company_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.CompanyName, user.CreatedAt)
	if err != nil {
		return nil, wrap("create user", err)
	}
	return user, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return db.scanUser(ctx, `SELECT id, email, password_hash, name, company_name, created_at FROM users WHERE email = $1`, email)
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	return db.scanUser(ctx, `SELECT id, email, password_hash, name, company_name, created_at FROM users WHERE id = $1`, id)
}

// FirstUser returns the single user of the installation. Used by offline tools.
func (db *DB) FirstUser(ctx context.Context) (*User, error) {
	return db.scanUser(ctx, `SELECT id, email, password_hash, name, company_name, created_at FROM users ORDER BY created_at ASC LIMIT 1`)
}

func (db *DB) scanUser(ctx context.Context, query string, args ...any) (*User, error) {
	u := &User{}
	err := db.connection.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CompanyName, &u.CreatedAt)
	if err != nil {
		return nil, wrap("get user", err)
	}
	return u, nil
}
