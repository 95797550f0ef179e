package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worksphere/admin-auth/internal/auth"
	"github.com/worksphere/admin-auth/internal/config"
	"github.com/worksphere/admin-auth/internal/domain"
	"github.com/worksphere/admin-auth/internal/events"
	"github.com/worksphere/admin-auth/internal/observability"
	"github.com/worksphere/admin-auth/internal/repository"
)

// Outcomes returned to callers. Internal reasons are logged and audited only.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrLoginFailed        = errors.New("login failed")
	ErrInvalidToken       = errors.New("invalid token")
)

// LoginResult is returned for a successful login.
type LoginResult struct {
	Token  string
	Claims *domain.ClaimSet
}

// AdminAuthDependencies encapsulates collaborators for the admin auth service.
type AdminAuthDependencies struct {
	Logger     *zap.Logger
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	// Attempts enables the failed-login throttle when non-nil.
	Attempts repository.LoginAttemptRepository
	Clock    func() time.Time
}

// AdminAuthService authenticates the configured administrator and verifies admin tokens.
type AdminAuthService struct {
	verifier    *auth.Verifier
	tokens      *auth.TokenManager
	logger      *zap.Logger
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	attempts    repository.LoginAttemptRepository
	maxFailures int64
	lockout     time.Duration
	now         func() time.Time
}

// NewAdminAuthService builds the service. It fails with an error wrapping
// config.ErrMissingConfig when the reference credentials or signing key are absent.
func NewAdminAuthService(cfg config.AuthConfig, deps AdminAuthDependencies) (*AdminAuthService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	verifier, err := auth.NewVerifier(cfg.Admin)
	if err != nil {
		return nil, err
	}

	method, err := auth.SigningMethodFromName(cfg.JWTAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrMissingConfig, err)
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL,
		auth.WithClock(now),
		auth.WithIssuer(cfg.JWTIssuer),
		auth.WithSigningMethod(method),
	)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}

	svc := &AdminAuthService{
		verifier:   verifier,
		tokens:     tokens,
		logger:     logger.Named("admin_auth"),
		dispatcher: dispatcher,
		metrics:    deps.Metrics,
		now:        now,
	}
	if deps.Attempts != nil && cfg.MaxFailedAttempts > 0 && cfg.LockoutWindow() > 0 {
		svc.attempts = deps.Attempts
		svc.maxFailures = int64(cfg.MaxFailedAttempts)
		svc.lockout = cfg.LockoutWindow()
	}
	return svc, nil
}

// TokenTTL returns the lifetime of issued tokens.
func (s *AdminAuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Login verifies the submitted credentials and issues a SUPER_ADMIN token.
// Errors are one of ErrInvalidCredentials, ErrTooManyAttempts or ErrLoginFailed.
func (s *AdminAuthService) Login(ctx context.Context, identity, secret string) (*LoginResult, error) {
	clientIP := ClientIPFromContext(ctx)
	log := s.logger.With(zap.String("email", identity), zap.String("ip", clientIP))

	if s.throttled(ctx, clientIP, log) || !s.reserveAttempt(ctx, clientIP, log) {
		log.Warn("login attempt throttled")
		s.publish(ctx, events.EventAdminLoginRejected, identity, "", events.ReasonThrottled)
		s.metrics.RecordAuthOutcome("login", string(events.ReasonThrottled))
		return nil, ErrTooManyAttempts
	}

	if err := s.verifier.Verify(identity, secret); err != nil {
		reason := loginReason(err)
		eventType := events.EventAdminLoginRejected
		if reason == events.ReasonHashFailure {
			log.Error("password hash comparison failed", zap.Error(err))
			eventType = events.EventAdminLoginFailed
		} else {
			log.Warn("login rejected", zap.String("reason", string(reason)))
		}
		s.publish(ctx, eventType, identity, "", reason)
		s.metrics.RecordAuthOutcome("login", string(reason))
		return nil, ErrInvalidCredentials
	}
	s.resetFailures(ctx, clientIP, log)

	token, claims, err := s.tokens.Issue(s.verifier.Identity())
	if err != nil {
		log.Error("failed to sign admin token", zap.Error(err))
		s.publish(ctx, events.EventAdminLoginFailed, identity, "", events.ReasonSigningFailure)
		s.metrics.RecordAuthOutcome("login", string(events.ReasonSigningFailure))
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	log.Info("admin login succeeded", zap.String("token_id", claims.ID))
	s.publish(ctx, events.EventAdminLoginSucceeded, identity, claims.ID, events.ReasonNone)
	s.metrics.RecordAuthOutcome("login", "accepted")

	return &LoginResult{Token: token, Claims: claims.ClaimSet()}, nil
}

// VerifyToken validates a presented token and returns its role-checked claim set.
// Every rejection is reported as ErrInvalidToken.
func (s *AdminAuthService) VerifyToken(ctx context.Context, token string) (*domain.ClaimSet, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		reason := tokenReason(err)
		s.logger.Warn("token rejected",
			zap.String("reason", string(reason)),
			zap.String("ip", ClientIPFromContext(ctx)))
		s.publish(ctx, events.EventAdminTokenRejected, "", "", reason)
		s.metrics.RecordAuthOutcome("token", string(reason))
		return nil, ErrInvalidToken
	}

	s.metrics.RecordAuthOutcome("token", "accepted")
	return claims.ClaimSet(), nil
}

// throttled rejects locked-out clients without extending their counter.
func (s *AdminAuthService) throttled(ctx context.Context, clientIP string, log *zap.Logger) bool {
	if s.attempts == nil {
		return false
	}
	count, err := s.attempts.Count(ctx, throttleKey(clientIP))
	if err != nil {
		log.Warn("login throttle unavailable", zap.Error(err))
		return false
	}
	return count >= s.maxFailures
}

// reserveAttempt counts the attempt before credentials are checked and reports
// whether the store's counter is still within maxFailures.
func (s *AdminAuthService) reserveAttempt(ctx context.Context, clientIP string, log *zap.Logger) bool {
	if s.attempts == nil {
		return true
	}
	count, err := s.attempts.Increment(ctx, throttleKey(clientIP), s.lockout)
	if err != nil {
		log.Warn("failed to record login attempt", zap.Error(err))
		return true
	}
	return count <= s.maxFailures
}

func (s *AdminAuthService) resetFailures(ctx context.Context, clientIP string, log *zap.Logger) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, throttleKey(clientIP)); err != nil {
		log.Warn("failed to reset login failures", zap.Error(err))
	}
}

func (s *AdminAuthService) publish(ctx context.Context, eventType events.EventType, identity, tokenID string, reason events.Reason) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Identity:  identity,
		TokenID:   tokenID,
		Reason:    reason,
		RemoteIP:  ClientIPFromContext(ctx),
		Timestamp: s.now().UTC(),
	})
}

func throttleKey(clientIP string) string {
	if clientIP == "" {
		return "unknown"
	}
	return strings.ToLower(clientIP)
}

func loginReason(err error) events.Reason {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return events.ReasonMissingCredentials
	case errors.Is(err, auth.ErrIdentityMismatch):
		return events.ReasonUnknownIdentity
	case errors.Is(err, auth.ErrSecretMismatch):
		return events.ReasonSecretMismatch
	default:
		return events.ReasonHashFailure
	}
}

func tokenReason(err error) events.Reason {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		return events.ReasonTokenMissing
	case errors.Is(err, auth.ErrTokenExpired):
		return events.ReasonTokenExpired
	case errors.Is(err, auth.ErrRoleMismatch):
		return events.ReasonRoleMismatch
	default:
		return events.ReasonTokenInvalid
	}
}
