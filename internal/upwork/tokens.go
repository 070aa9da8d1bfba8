package upwork

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/storage"
)

// ErrNotConnected means the user never linked an Upwork account (or disconnected it).
var ErrNotConnected = errors.New("upwork account not connected")

// refreshSkew refreshes tokens slightly before they actually expire.
const refreshSkew = time.Minute

var errNoExchanger = fmt.Errorf("upwork oauth is not configured: %w", apperr.ErrUpstreamUnavailable)

// AccountStore persists one token pair per user.
type AccountStore interface {
	GetUpworkAccount(ctx context.Context, userID string) (*storage.UpworkAccount, error)
	UpsertUpworkAccount(ctx context.Context, acc *storage.UpworkAccount) error
	DeleteUpworkAccount(ctx context.Context, userID string) error
}

// CodeExchanger is the part of *Exchanger the token manager needs.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// ConnectionStatus is what the UI shows about the Upwork link.
type ConnectionStatus struct {
	Connected bool       `json:"upworkConnected"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
	AccountID string     `json:"accountId,omitempty"`
}

// TokenManager hands out valid access tokens and keeps at most one refresh in flight per user.
type TokenManager struct {
	store     AccountStore
	exchanger CodeExchanger
	group     singleflight.Group
	timeout   time.Duration
	now       func() time.Time
}

func NewTokenManager(store AccountStore, exchanger CodeExchanger, timeout time.Duration) *TokenManager {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &TokenManager{
		store:     store,
		exchanger: exchanger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Connect exchanges the code and stores the resulting pair, replacing any previous one.
func (m *TokenManager) Connect(ctx context.Context, userID, code string) (*storage.UpworkAccount, error) {
	if m.exchanger == nil {
		return nil, errNoExchanger
	}
	pair, err := m.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	acc := accountFromPair(userID, pair)
	if err := m.store.UpsertUpworkAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("store upwork tokens: %w", err)
	}
	log.Printf("[TokenManager] Upwork connected for user %s", userID)
	return acc, nil
}

// AccessToken returns a usable bearer token, refreshing it first when it is about to expire.
func (m *TokenManager) AccessToken(ctx context.Context, userID string) (string, error) {
	acc, err := m.account(ctx, userID)
	if err != nil {
		return "", err
	}
	if acc.ExpiresAt == nil || m.now().Add(refreshSkew).Before(*acc.ExpiresAt) {
		return acc.AccessToken, nil
	}
	return m.refresh(ctx, userID)
}

// ForceRefresh refreshes regardless of the stored expiry, e.g. after the API answered 401.
func (m *TokenManager) ForceRefresh(ctx context.Context, userID string) (string, error) {
	if _, err := m.account(ctx, userID); err != nil {
		return "", err
	}
	return m.refresh(ctx, userID)
}

// Status reports whether the user has a stored token pair.
func (m *TokenManager) Status(ctx context.Context, userID string) (ConnectionStatus, error) {
	acc, err := m.account(ctx, userID)
	if errors.Is(err, ErrNotConnected) {
		return ConnectionStatus{}, nil
	}
	if err != nil {
		return ConnectionStatus{}, err
	}
	st := ConnectionStatus{Connected: true, ExpiresAt: acc.ExpiresAt, AccountID: acc.UpstreamAccountID}
	if acc.ExpiresAt != nil && !m.now().Before(*acc.ExpiresAt) {
		st.Expired = true
	}
	return st, nil
}

// Disconnect forgets the user's token pair.
func (m *TokenManager) Disconnect(ctx context.Context, userID string) error {
	if err := m.store.DeleteUpworkAccount(ctx, userID); err != nil {
		return fmt.Errorf("delete upwork tokens: %w", err)
	}
	log.Printf("[TokenManager] Upwork disconnected for user %s", userID)
	return nil
}

func (m *TokenManager) account(ctx context.Context, userID string) (*storage.UpworkAccount, error) {
	acc, err := m.store.GetUpworkAccount(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// refresh runs at most once concurrently per user; callers arriving meanwhile share the result.
// The refresh itself is detached from any single request's cancellation.
func (m *TokenManager) refresh(ctx context.Context, userID string) (string, error) {
	if m.exchanger == nil {
		return "", fmt.Errorf("cannot refresh: %w", apperr.ErrRequiresReconnect)
	}
	ch := m.group.DoChan(userID, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()

		acc, err := m.account(rctx, userID)
		if err != nil {
			return "", err
		}
		pair, err := m.exchanger.Refresh(rctx, acc.RefreshToken)
		if err != nil {
			log.Printf("[TokenManager] Refresh failed for user %s: %v", userID, err)
			return "", err
		}
		next := accountFromPair(userID, pair)
		next.UpstreamAccountID = acc.UpstreamAccountID
		if next.RefreshToken == "" {
			next.RefreshToken = acc.RefreshToken
		}
		if err := m.store.UpsertUpworkAccount(rctx, next); err != nil {
			return "", fmt.Errorf("store refreshed tokens: %w", err)
		}
		log.Printf("[TokenManager] Refreshed Upwork token for user %s", userID)
		return next.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func accountFromPair(userID string, pair *TokenPair) *storage.UpworkAccount {
	acc := &storage.UpworkAccount{
		UserID:       userID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	}
	if acc.TokenType == "" {
		acc.TokenType = "Bearer"
	}
	if !pair.Expiry.IsZero() {
		exp := pair.Expiry.UTC()
		acc.ExpiresAt = &exp
	}
	return acc
}
