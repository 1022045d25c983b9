package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"studyzone_backend/internal/auth"
	"studyzone_backend/internal/repositories"
)

// recordingHasher wraps auth.Hasher, can fail the next N hashes and remembers
// every hash a password was compared against.
type recordingHasher struct {
	inner *auth.Hasher

	mu       sync.Mutex
	failNext int
	hashes   int
	compared []string
}

func newRecordingHasher() *recordingHasher {
	return &recordingHasher{inner: auth.NewHasher(bcrypt.MinCost, 2)}
}

func (h *recordingHasher) Hash(ctx context.Context, password string) (string, error) {
	h.mu.Lock()
	h.hashes++
	if h.failNext > 0 {
		h.failNext--
		h.mu.Unlock()
		return "", errors.New("hasher unavailable")
	}
	h.mu.Unlock()
	return h.inner.Hash(ctx, password)
}

func (h *recordingHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	h.mu.Lock()
	h.compared = append(h.compared, hash)
	h.mu.Unlock()
	return h.inner.Compare(context.Background(), hash, password)
}

func (h *recordingHasher) hashCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes
}

func (h *recordingHasher) lastCompared() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.compared[len(h.compared)-1]
}

func TestVerifyPassword_UnknownUserSurvivesCancelledFirstCaller(t *testing.T) {
	hasher := newRecordingHasher()
	store := NewCredentialStore(repositories.NewMemoryUserRepository(), hasher)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := store.VerifyPassword(cancelled, nil, "whatever")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.VerifyPassword(context.Background(), nil, "whatever")
	require.NoError(t, err)
	assert.False(t, ok)

	// the unknown-account path must pay for a real bcrypt comparison
	cost, err := bcrypt.Cost([]byte(hasher.lastCompared()))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.Equal(t, 1, hasher.hashCount())
}

func TestVerifyPassword_TimingHashFailureIsReportedAndRetried(t *testing.T) {
	hasher := newRecordingHasher()
	hasher.failNext = 1
	store := NewCredentialStore(repositories.NewMemoryUserRepository(), hasher)
	ctx := context.Background()

	_, err := store.VerifyPassword(ctx, nil, "whatever")
	require.Error(t, err)
	assert.Empty(t, hasher.compared)

	ok, err := store.VerifyPassword(ctx, nil, "whatever")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = bcrypt.Cost([]byte(hasher.lastCompared()))
	assert.NoError(t, err)
	assert.Equal(t, 2, hasher.hashCount())
}

func TestVerifyPassword_KnownUserSkipsTimingHash(t *testing.T) {
	hasher := newRecordingHasher()
	store := NewCredentialStore(repositories.NewMemoryUserRepository(), hasher)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "ann", "a@x.com", "secret1")
	require.NoError(t, err)

	ok, err := store.VerifyPassword(ctx, user, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, hasher.hashCount())
	assert.Equal(t, user.PasswordHash, hasher.lastCompared())
}
