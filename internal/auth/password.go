package auth

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	// MinPasswordLength is the shortest password accepted anywhere a password is set.
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
)

// Hasher wraps bcrypt and caps the number of hashes computed at once.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher returns a Hasher. cost <= 0 uses bcrypt.DefaultCost and
// concurrency <= 0 uses GOMAXPROCS.
func NewHasher(cost, concurrency int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Hasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(concurrency)),
	}
}

// Hash produces a salted bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash. The comparison is constant-time.
func (h *Hasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
		return false, nil
	}
	return false, err
}

// ValidatePassword checks the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
