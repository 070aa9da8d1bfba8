package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/testutil"
)

var validSignup = SignupRequest{Email: " Ana@Example.com ", Password: "correct-horse", Name: "Ana Lima", CompanyName: "Lima Dev"}

func TestSignupAndLogin(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(store, time.Hour)
	ctx := context.Background()

	user, sess, err := svc.Signup(ctx, validSignup)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, validSignup.Password, user.PasswordHash)
	assert.Len(t, sess.Token, 64)

	got, err := svc.Verify(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, sess2, err := svc.Login(ctx, "ANA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, sess2.Token)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, apperr.ErrAuthenticationRequired)
}

func TestSignup_SingleUserOnly(t *testing.T) {
	svc := NewService(testutil.NewMemStore(), time.Hour)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, validSignup)
	require.NoError(t, err)

	other := validSignup
	other.Email = "second@example.com"
	_, _, err = svc.Signup(ctx, other)
	assert.ErrorIs(t, err, ErrSignupClosed)
	assert.Equal(t, 409, apperr.Status(err))
}

func TestSignup_Validation(t *testing.T) {
	svc := NewService(testutil.NewMemStore(), time.Hour)

	for name, req := range map[string]SignupRequest{
		"bad email":      {Email: "nope", Password: "long-enough", Name: "A"},
		"short password": {Email: "a@b.co", Password: "short", Name: "A"},
		"no name":        {Email: "a@b.co", Password: "long-enough"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Signup(context.Background(), req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestVerify_ExpiredSessionIsDeleted(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(store, time.Hour)
	ctx := context.Background()

	_, sess, err := svc.Signup(ctx, validSignup)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, store.SessionCount())
}

func TestLogout(t *testing.T) {
	svc := NewService(testutil.NewMemStore(), time.Hour)
	ctx := context.Background()

	_, sess, err := svc.Signup(ctx, validSignup)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, sess.Token))

	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestPurgeExpired(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, validSignup)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
