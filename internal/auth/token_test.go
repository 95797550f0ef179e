package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worksphere/admin-auth/internal/config"
	"github.com/worksphere/admin-auth/internal/domain"
)

var testSecret = []byte("test-secret-key-at-least-32-bytes-long")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTokenManager(t *testing.T, clock *fakeClock, ttl time.Duration) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, ttl, WithClock(clock.Now), WithIssuer("worksphere"))
	require.NoError(t, err)
	return tm
}

// signRaw signs arbitrary claims with the shared test secret, bypassing Issue.
func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewTokenManager(t *testing.T) {
	tm, err := NewTokenManager(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, tm.TTL())

	tm, err = NewTokenManager(testSecret, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, tm.TTL())

	tm, err = NewTokenManager(testSecret, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, time.Second, tm.TTL())

	tm, err = NewTokenManager(testSecret, 90*time.Second+time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 91*time.Second, tm.TTL())

	tm, err = NewTokenManager(nil, time.Hour)
	assert.Nil(t, tm)
	assert.ErrorIs(t, err, config.ErrMissingConfig)
}

func TestIssueAndValidate(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)

	token, issued, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	assert.Equal(t, testAdminEmail, issued.Email)
	assert.Equal(t, domain.RoleSuperAdmin, issued.Role)
	assert.Equal(t, clock.Now(), issued.IssuedAt.Time)
	assert.Equal(t, clock.Now().Add(time.Hour), issued.ExpiresAt.Time)
	assert.NotEmpty(t, issued.ID)

	claims, err := tm.Validate(token)
	require.NoError(t, err)

	set := claims.ClaimSet()
	assert.Equal(t, testAdminEmail, set.Identity)
	assert.Equal(t, domain.RoleSuperAdmin, set.Role)
	assert.True(t, set.IsSuperAdmin())
	assert.Equal(t, issued.ID, set.ID)
	assert.Equal(t, clock.Now().Add(time.Hour), set.ExpiresAt)
}

func TestIssueAndValidate_FractionalClock(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 200*int(time.Millisecond), time.UTC)}

	for _, ttl := range []time.Duration{500 * time.Millisecond, time.Second, 1500 * time.Millisecond} {
		tm := newTestTokenManager(t, clock, ttl)

		token, issued, err := tm.Issue(testAdminEmail)
		require.NoError(t, err, ttl)
		assert.True(t, issued.ExpiresAt.Time.After(clock.Now()), ttl)

		claims, err := tm.Validate(token)
		require.NoError(t, err, ttl)
		assert.Equal(t, issued.ID, claims.ID)
	}
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	tm := newTestTokenManager(t, newFakeClock(), time.Hour)

	first, _, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)
	second, _, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestIssue_EmptyIdentity(t *testing.T) {
	tm := newTestTokenManager(t, newFakeClock(), time.Hour)

	token, claims, err := tm.Issue("")
	assert.ErrorIs(t, err, ErrSigningFailed)
	assert.Empty(t, token)
	assert.Nil(t, claims)
}

type failingSigningMethod struct{}

func (failingSigningMethod) Alg() string { return "HS256" }

func (failingSigningMethod) Sign(string, interface{}) ([]byte, error) {
	return nil, errors.New("key material rejected")
}

func (failingSigningMethod) Verify(string, []byte, interface{}) error {
	return errors.New("not implemented")
}

func TestIssue_SigningFailure(t *testing.T) {
	tm, err := NewTokenManager(testSecret, time.Hour, WithSigningMethod(failingSigningMethod{}))
	require.NoError(t, err)

	token, claims, err := tm.Issue(testAdminEmail)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSigningFailed)
	assert.Empty(t, token)
	assert.Nil(t, claims)
}

func TestValidate_Expired(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Second)

	token, _, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)

	claims, err := tm.Validate(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_ExpiresExactlyAtBoundary(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Minute)

	token, _, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)

	clock.Advance(time.Minute - time.Second)
	_, err = tm.Validate(token)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_Invalid(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty token", token: "", wantErr: ErrTokenMissing},
		{name: "malformed token", token: "not.a.valid.token", wantErr: ErrTokenInvalid},
		{name: "random string", token: "definitely-not-a-jwt-token", wantErr: ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tm.Validate(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestValidate_DifferentSecret(t *testing.T) {
	clock := newFakeClock()
	issuer, err := NewTokenManager([]byte("secret-key-1-at-least-32-bytes-long!!"), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	validator, err := NewTokenManager([]byte("secret-key-2-at-least-32-bytes-long!!"), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	token, _, err := issuer.Issue(testAdminEmail)
	require.NoError(t, err)

	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_TamperedClaims(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)

	token, _, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(payload, &body))

	body["email"] = "intruder@example.com"
	altered, err := json.Marshal(body)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(altered)

	_, err = tm.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_RoleMismatch(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)
	now := clock.Now()

	for _, role := range []domain.Role{"", "USER", "ADMIN", "super_admin"} {
		t.Run(string(role), func(t *testing.T) {
			token := signRaw(t, jwt.SigningMethodHS256, &Claims{
				Email: testAdminEmail,
				Role:  role,
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "worksphere",
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}, testSecret)

			claims, err := tm.Validate(token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrRoleMismatch)
		})
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)
	now := clock.Now()

	claims := &Claims{
		Email: testAdminEmail,
		Role:  domain.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "worksphere",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	hs512 := signRaw(t, jwt.SigningMethodHS512, claims, testSecret)
	_, err := tm.Validate(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Validate(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_RequiresExpiry(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)

	token := signRaw(t, jwt.SigningMethodHS256, &Claims{
		Email: testAdminEmail,
		Role:  domain.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "worksphere",
			IssuedAt: jwt.NewNumericDate(clock.Now()),
		},
	}, testSecret)

	_, err := tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_WrongIssuer(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)
	other, err := NewTokenManager(testSecret, time.Hour, WithClock(clock.Now), WithIssuer("elsewhere"))
	require.NoError(t, err)

	token, _, err := other.Issue(testAdminEmail)
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_Idempotent(t *testing.T) {
	clock := newFakeClock()
	tm := newTestTokenManager(t, clock, time.Hour)

	token, _, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)

	first, err := tm.Validate(token)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := tm.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, first.ClaimSet(), again.ClaimSet())
	}
}

func TestSigningMethodFromName(t *testing.T) {
	for name, want := range map[string]jwt.SigningMethod{
		"":      jwt.SigningMethodHS256,
		"HS256": jwt.SigningMethodHS256,
		"HS384": jwt.SigningMethodHS384,
		"HS512": jwt.SigningMethodHS512,
	} {
		got, err := SigningMethodFromName(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := SigningMethodFromName("RS256")
	assert.Error(t, err)
}

func TestIssueAndValidate_HS512(t *testing.T) {
	clock := newFakeClock()
	tm, err := NewTokenManager(testSecret, time.Hour, WithClock(clock.Now), WithSigningMethod(jwt.SigningMethodHS512))
	require.NoError(t, err)

	token, _, err := tm.Issue(testAdminEmail)
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, testAdminEmail, claims.Email)
}
