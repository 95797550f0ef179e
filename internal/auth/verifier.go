package auth

import (
	"errors"
	"fmt"

	"github.com/worksphere/admin-auth/internal/config"
)

var (
	// ErrMissingCredentials is returned when identity or secret is empty.
	ErrMissingCredentials = errors.New("identity and secret are required")
	// ErrInvalidCredentials is the uniform rejection for a login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIdentityMismatch is returned when the identity is not the configured admin.
	ErrIdentityMismatch = fmt.Errorf("%w: unknown identity", ErrInvalidCredentials)
	// ErrSecretMismatch is returned when the secret does not match the stored hash.
	ErrSecretMismatch = fmt.Errorf("%w: secret mismatch", ErrInvalidCredentials)
	// ErrHashFailure is returned when the stored hash could not be compared.
	ErrHashFailure = fmt.Errorf("%w: hash comparison failed", ErrInvalidCredentials)
)

// Verifier checks login attempts against the single configured admin identity.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	identity     string
	passwordHash string
	compare      func(hashed, plain string) error
}

// NewVerifier builds a verifier for the configured reference identity.
func NewVerifier(cfg config.AdminConfig) (*Verifier, error) {
	if cfg.Email == "" || cfg.PasswordHash == "" {
		return nil, fmt.Errorf("%w: admin identity and password hash", config.ErrMissingConfig)
	}
	return &Verifier{
		identity:     cfg.Email,
		passwordHash: cfg.PasswordHash,
		compare:      ComparePassword,
	}, nil
}

// Identity returns the reference identity.
func (v *Verifier) Identity() string {
	return v.identity
}

// Verify returns nil when identity and secret match the reference credentials.
// Every rejection wraps either ErrMissingCredentials or ErrInvalidCredentials.
func (v *Verifier) Verify(identity, secret string) error {
	if identity == "" || secret == "" {
		return ErrMissingCredentials
	}
	if identity != v.identity {
		return ErrIdentityMismatch
	}

	err := v.compare(v.passwordHash, secret)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPasswordMismatch):
		return ErrSecretMismatch
	default:
		return fmt.Errorf("%w: %v", ErrHashFailure, err)
	}
}
