package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/worksphere/admin-auth/internal/config"
	"github.com/worksphere/admin-auth/internal/domain"
)

var (
	// ErrTokenInvalid is the uniform rejection for a presented token.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenMissing is returned for an empty token.
	ErrTokenMissing = fmt.Errorf("%w: missing", ErrTokenInvalid)
	// ErrTokenExpired is returned once the token's expiry has been reached.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrTokenInvalid)
	// ErrRoleMismatch is returned when a correctly signed token lacks the admin role.
	ErrRoleMismatch = fmt.Errorf("%w: role mismatch", ErrTokenInvalid)
	// ErrSigningFailed is returned when a token could not be signed.
	ErrSigningFailed = errors.New("token signing failed")
)

// Claims describes JWT payload.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// ClaimSet converts verified JWT claims into the domain claim set. Times are UTC.
func (c *Claims) ClaimSet() *domain.ClaimSet {
	set := &domain.ClaimSet{
		ID:       c.ID,
		Identity: c.Email,
		Role:     c.Role,
	}
	if c.IssuedAt != nil {
		set.IssuedAt = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		set.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return set
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// WithIssuer sets the iss claim written and required by the manager.
func WithIssuer(issuer string) TokenOption {
	return func(tm *TokenManager) {
		tm.issuer = issuer
	}
}

// WithSigningMethod overrides the default HS256 signing method.
func WithSigningMethod(method jwt.SigningMethod) TokenOption {
	return func(tm *TokenManager) {
		if method != nil {
			tm.method = method
		}
	}
}

// SigningMethodFromName resolves the HMAC algorithms accepted in configuration.
func SigningMethodFromName(name string) (jwt.SigningMethod, error) {
	switch name {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", name)
	}
}

// TokenManager handles issuing and validating admin JWT tokens.
// It is immutable after construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	method jwt.SigningMethod
	now    func() time.Time
}

// NewTokenManager builds a new manager. A non-positive ttl falls back to
// config.DefaultTokenTTL; any other ttl is rounded up to whole seconds since
// exp carries no fractional part.
func NewTokenManager(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: signing key", config.ErrMissingConfig)
	}
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	if rem := ttl % time.Second; rem != 0 {
		ttl += time.Second - rem
	}

	tm := &TokenManager{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// TTL returns the lifetime of issued tokens.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a SUPER_ADMIN token for the given identity.
func (tm *TokenManager) Issue(identity string) (string, *Claims, error) {
	if identity == "" {
		return "", nil, fmt.Errorf("%w: empty identity", ErrSigningFailed)
	}

	now := tm.now()
	claims := &Claims{
		Email: identity,
		Role:  domain.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return tokenString, claims, nil
}

// Validate verifies signature, expiry and role, and returns the claims.
// Every failure wraps ErrTokenInvalid.
func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{tm.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Role != domain.RoleSuperAdmin {
		return nil, ErrRoleMismatch
	}
	return claims, nil
}
