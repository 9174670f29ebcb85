package service

import "errors"

// Security-decision failures are expected outcomes and always surface as
// typed results. Infrastructure failures (storage.ErrStoreUnavailable,
// ErrHashingFailed) propagate separately so the HTTP layer can fail closed.
var (
	// ErrInvalidCredentials covers both unknown account and wrong password.
	// The two causes are intentionally indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput rejects structurally invalid registration data.
	ErrInvalidInput       = errors.New("invalid input")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token is malformed")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrHashingFailed      = errors.New("password hashing failed")
)
