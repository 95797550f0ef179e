package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAdminLoginSucceeded EventType = "admin_login_succeeded"
	EventAdminLoginRejected  EventType = "admin_login_rejected"
	EventAdminLoginFailed    EventType = "admin_login_failed"
	EventAdminTokenRejected  EventType = "admin_token_rejected"
)

// Reason records why an authentication attempt did not succeed. Reasons are
// kept for audit only and never returned to the caller.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonMissingCredentials Reason = "missing_credentials"
	ReasonUnknownIdentity    Reason = "unknown_identity"
	ReasonSecretMismatch     Reason = "secret_mismatch"
	ReasonHashFailure        Reason = "hash_failure"
	ReasonThrottled          Reason = "throttled"
	ReasonSigningFailure     Reason = "signing_failure"
	ReasonTokenMissing       Reason = "token_missing"
	ReasonTokenInvalid       Reason = "token_invalid"
	ReasonTokenExpired       Reason = "token_expired"
	ReasonRoleMismatch       Reason = "role_mismatch"
)

// Event represents an authentication outcome emitted by the auth service.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Identity  string    `json:"identity,omitempty"`
	TokenID   string    `json:"token_id,omitempty"`
	Reason    Reason    `json:"reason,omitempty"`
	RemoteIP  string    `json:"remote_ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
