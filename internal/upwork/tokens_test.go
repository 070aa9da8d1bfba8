package upwork

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upwork-proposals/internal/apperr"
	"upwork-proposals/internal/storage"
)

type fakeAccounts struct {
	mu   sync.Mutex
	rows map[string]storage.UpworkAccount
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: map[string]storage.UpworkAccount{}}
}

func (f *fakeAccounts) GetUpworkAccount(_ context.Context, userID string) (*storage.UpworkAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.rows[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &acc, nil
}

func (f *fakeAccounts) UpsertUpworkAccount(_ context.Context, acc *storage.UpworkAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[acc.UserID] = *acc
	return nil
}

func (f *fakeAccounts) DeleteUpworkAccount(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, userID)
	return nil
}

type fakeExchanger struct {
	refreshes atomic.Int32
	release   chan struct{}
	started   chan struct{}
	once      sync.Once
	err       error
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (*TokenPair, error) {
	if code == "" {
		return nil, &TokenExchangeError{Code: "invalid_request"}
	}
	return &TokenPair{AccessToken: "at-" + code, RefreshToken: "rt-" + code, Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeExchanger) Refresh(_ context.Context, refreshToken string) (*TokenPair, error) {
	n := f.refreshes.Add(1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &TokenPair{AccessToken: "refreshed-" + string(rune('0'+n)), Expiry: time.Now().Add(time.Hour)}, nil
}

func expiredAccount(userID string) storage.UpworkAccount {
	past := time.Now().Add(-time.Minute)
	return storage.UpworkAccount{UserID: userID, AccessToken: "old", RefreshToken: "rt-old", ExpiresAt: &past, UpstreamAccountID: "acct-9"}
}

func TestTokenManager_ConnectAndStatus(t *testing.T) {
	store := newFakeAccounts()
	m := NewTokenManager(store, &fakeExchanger{}, time.Second)
	ctx := context.Background()

	st, err := m.Status(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, st.Connected)

	_, err = m.AccessToken(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = m.Connect(ctx, "u1", "code")
	require.NoError(t, err)

	st, err = m.Status(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.False(t, st.Expired)

	token, err := m.AccessToken(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "at-code", token)

	require.NoError(t, m.Disconnect(ctx, "u1"))
	st, err = m.Status(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, st.Connected)
}

func TestTokenManager_ConnectFailureStoresNothing(t *testing.T) {
	store := newFakeAccounts()
	m := NewTokenManager(store, &fakeExchanger{}, time.Second)

	_, err := m.Connect(context.Background(), "u1", "")
	var exErr *TokenExchangeError
	assert.ErrorAs(t, err, &exErr)
	assert.Empty(t, store.rows)
}

func TestTokenManager_SingleRefreshForConcurrentCallers(t *testing.T) {
	store := newFakeAccounts()
	store.rows["u1"] = expiredAccount("u1")
	ex := &fakeExchanger{release: make(chan struct{}), started: make(chan struct{})}
	m := NewTokenManager(store, ex, time.Second)

	const callers = 8
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = m.AccessToken(context.Background(), "u1")
		}(i)
	}

	<-ex.started
	time.Sleep(50 * time.Millisecond)
	close(ex.release)
	wg.Wait()

	assert.Equal(t, int32(1), ex.refreshes.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "refreshed-1", tokens[i])
	}

	acc := store.rows["u1"]
	assert.Equal(t, "rt-old", acc.RefreshToken, "refresh token kept when provider does not rotate it")
	assert.Equal(t, "acct-9", acc.UpstreamAccountID)
}

func TestTokenManager_RefreshFailureRequiresReconnect(t *testing.T) {
	store := newFakeAccounts()
	store.rows["u1"] = expiredAccount("u1")
	ex := &fakeExchanger{err: apperr.ErrRequiresReconnect}
	m := NewTokenManager(store, ex, time.Second)

	_, err := m.AccessToken(context.Background(), "u1")
	assert.ErrorIs(t, err, apperr.ErrRequiresReconnect)

	st, err := m.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.True(t, st.Expired)
}

func TestTokenManager_ForceRefresh(t *testing.T) {
	store := newFakeAccounts()
	future := time.Now().Add(time.Hour)
	store.rows["u1"] = storage.UpworkAccount{UserID: "u1", AccessToken: "valid", RefreshToken: "rt", ExpiresAt: &future}
	ex := &fakeExchanger{}
	m := NewTokenManager(store, ex, time.Second)

	token, err := m.AccessToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "valid", token)
	assert.Zero(t, ex.refreshes.Load())

	token, err = m.ForceRefresh(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "refreshed-1", token)
}
