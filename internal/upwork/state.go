package upwork

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"upwork-proposals/internal/apperr"
)

const stateIssuer = "upwork-proposals"

// ErrInvalidState is returned when the OAuth callback carries a state we did not issue for this user.
var ErrInvalidState = fmt.Errorf("invalid oauth state: %w", apperr.ErrValidation)

// StateSigner issues and verifies the OAuth state parameter as a short-lived HS256 token
// bound to the local user.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner uses secret when given, otherwise a random per-process key
// (pending authorizations then do not survive a restart).
func NewStateSigner(secret string, ttl time.Duration) (*StateSigner, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a state value for userID.
func (s *StateSigner) Issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    stateIssuer,
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature, expiry and that the state was issued to userID.
func (s *StateSigner) Verify(state, userID string) error {
	if state == "" {
		return fmt.Errorf("missing state: %w", ErrInvalidState)
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(state, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("state expired: %w", ErrInvalidState)
		}
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if claims.Subject != userID {
		return fmt.Errorf("state issued to another user: %w", ErrInvalidState)
	}
	return nil
}
