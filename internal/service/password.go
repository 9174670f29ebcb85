package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vionex/auth-service/internal/util"
)

// PasswordHasher wraps bcrypt with a fixed, configured work factor. The hash
// string is self-describing (algorithm, cost and salt travel inside it), so
// verification needs no extra state.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cfg *util.HasherConfig) *PasswordHasher {
	return &PasswordHasher{cost: cfg.Cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}
	return string(hashed), nil
}

// Verify reports whether the password matches the stored hash. A mismatch is
// a plain false; only an unparsable hash value is an error.
func (h *PasswordHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrHashingFailed, err)
}
