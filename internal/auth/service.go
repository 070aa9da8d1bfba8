// Package auth manages the single local account and its browser sessions.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/storage"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrAuthenticationRequired)
	ErrSessionExpired     = fmt.Errorf("session expired: %w", apperr.ErrAuthenticationRequired)
	ErrSessionNotFound    = fmt.Errorf("session not found: %w", apperr.ErrAuthenticationRequired)
	// ErrSignupClosed is returned once the installation already has its user.
	ErrSignupClosed = fmt.Errorf("an account already exists, please log in: %w", apperr.ErrConflict)
)

const minPasswordLength = 8

// Store is the persistence the auth service needs.
type Store interface {
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, email, passwordHash, name, company string) (*storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)
	GetUserByID(ctx context.Context, id string) (*storage.User, error)
	CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) (*storage.Session, error)
	GetSessionByToken(ctx context.Context, token string) (*storage.Session, error)
	DeleteSessionByToken(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
}

type Service struct {
	store      Store
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(store Store, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	return &Service{store: store, sessionTTL: sessionTTL, now: time.Now}
}

// Signup creates the one allowed user and logs them in.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*storage.User, *storage.Session, error) {
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, nil, fmt.Errorf("a valid email is required: %w", apperr.ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return nil, nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, apperr.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, nil, fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}

	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	if n > 0 {
		return nil, nil, ErrSignupClosed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, email, string(hash), strings.TrimSpace(req.Name), strings.TrimSpace(req.CompanyName))
	if errors.Is(err, apperr.ErrConflict) {
		return nil, nil, ErrSignupClosed
	}
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[Auth] Created user %s", user.ID)

	sess, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*storage.User, *storage.Session, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	sess, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Verify resolves a session token to its user. Expired sessions are deleted.
func (s *Service) Verify(ctx context.Context, token string) (*storage.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := s.store.GetSessionByToken(ctx, token)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(s.now()) {
		if err := s.store.DeleteSessionByToken(ctx, token); err != nil {
			log.Printf("[Auth] Failed to delete expired session: %v", err)
		}
		return nil, ErrSessionExpired
	}
	user, err := s.store.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return user, err
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSessionByToken(ctx, token)
}

// PurgeExpired deletes every expired session.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

func (s *Service) newSession(ctx context.Context, userID string) (*storage.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	return s.store.CreateSession(ctx, userID, token, s.now().Add(s.sessionTTL))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
