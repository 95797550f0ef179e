package dto

import "time"

// AdminLoginRequest payload for POST /api/v1/admin/auth/login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminSessionResponse describes the claims of a presented admin token.
type AdminSessionResponse struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenID   string    `json:"token_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuditEntryResponse is a single audit trail row.
type AuditEntryResponse struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	Email      string    `json:"email,omitempty"`
	TokenID    string    `json:"token_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RemoteIP   string    `json:"remote_ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
