package upwork

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/apperr"
)

func TestStateSigner(t *testing.T) {
	signer, err := NewStateSigner("secret", time.Minute)
	require.NoError(t, err)

	state, err := signer.Issue("user-1")
	require.NoError(t, err)

	assert.NoError(t, signer.Verify(state, "user-1"))
	assert.ErrorIs(t, signer.Verify(state, "user-2"), ErrInvalidState)
	assert.ErrorIs(t, signer.Verify("", "user-1"), ErrInvalidState)
	assert.ErrorIs(t, signer.Verify(state+"x", "user-1"), ErrInvalidState)
	assert.ErrorIs(t, signer.Verify(state, "user-2"), apperr.ErrValidation)
}

func TestStateSigner_Expired(t *testing.T) {
	signer, err := NewStateSigner("secret", time.Minute)
	require.NoError(t, err)

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }
	state, err := signer.Issue("user-1")
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	assert.ErrorIs(t, signer.Verify(state, "user-1"), ErrInvalidState)
}

func TestStateSigner_OtherKey(t *testing.T) {
	a, err := NewStateSigner("", 0)
	require.NoError(t, err)
	b, err := NewStateSigner("", 0)
	require.NoError(t, err)

	state, err := a.Issue("user-1")
	require.NoError(t, err)
	assert.ErrorIs(t, b.Verify(state, "user-1"), ErrInvalidState)
}
