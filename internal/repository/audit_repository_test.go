package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := occurred.Add(time.Millisecond)
	entry := &AuditEntry{
		ID:         uuid.NewString(),
		EventType:  "admin_login_rejected",
		Identity:   "admin@example.com",
		Reason:     "secret_mismatch",
		RemoteIP:   "10.0.0.1",
		OccurredAt: occurred,
	}

	mock.ExpectQuery(`(?s)INSERT INTO admin_auth_audit .* NULLIF\(\$3, ''\), NULLIF\(\$4, ''\)`).
		WithArgs(entry.ID, entry.EventType, entry.Identity, "", entry.Reason, entry.RemoteIP, occurred).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, NewAuditRepository(mock).Create(context.Background(), entry))
	assert.Equal(t, created, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_ListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	older := newer.Add(-5 * time.Minute)
	rows := pgxmock.NewRows([]string{"id", "event_type", "identity", "token_id", "reason", "remote_ip", "occurred_at", "created_at"}).
		AddRow("b", "admin_login_succeeded", "admin@example.com", "jti-1", "", "10.0.0.1", newer, newer).
		AddRow("a", "admin_token_rejected", "", "", "token_expired", "", older, older)

	mock.ExpectQuery(`(?s)COALESCE\(identity, ''\).*ORDER BY occurred_at DESC`).
		WithArgs(10).
		WillReturnRows(rows)

	entries, err := NewAuditRepository(mock).ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "jti-1", entries[0].TokenID)
	assert.Equal(t, "", entries[1].Identity)
	assert.Equal(t, "token_expired", entries[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_ListRecentEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM admin_auth_audit`).WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "event_type", "identity", "token_id", "reason", "remote_ip", "occurred_at", "created_at"}))

	entries, err := NewAuditRepository(mock).ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestAuditRepository_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM admin_auth_audit`).WithArgs(5).WillReturnError(errors.New("connection reset"))

	_, err = NewAuditRepository(mock).ListRecent(context.Background(), 5)
	assert.EqualError(t, err, "connection reset")
}

// TestAuditRepository_Postgres runs against a live database when
// AUDIT_TEST_POSTGRES_DSN is set.
func TestAuditRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("AUDIT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AUDIT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	// Temporary tables live on one connection.
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Exec(ctx, `CREATE TEMPORARY TABLE admin_auth_audit (
        id          UUID PRIMARY KEY,
        event_type  TEXT        NOT NULL,
        identity    TEXT,
        token_id    TEXT,
        reason      TEXT,
        remote_ip   TEXT,
        occurred_at TIMESTAMPTZ NOT NULL,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`)
	require.NoError(t, err)

	repo := NewAuditRepository(conn)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := &AuditEntry{ID: uuid.NewString(), EventType: "admin_token_rejected", Reason: "token_expired", OccurredAt: base}
	newer := &AuditEntry{ID: uuid.NewString(), EventType: "admin_login_succeeded", Identity: "admin@example.com", TokenID: "jti-1", RemoteIP: "10.0.0.1", OccurredAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.False(t, older.CreatedAt.IsZero())

	var nullIdentity bool
	require.NoError(t, conn.QueryRow(ctx, `SELECT identity IS NULL FROM admin_auth_audit WHERE id = $1`, older.ID).Scan(&nullIdentity))
	assert.True(t, nullIdentity)

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)
	assert.Equal(t, "", entries[1].Identity)
	assert.Equal(t, "", entries[1].TokenID)
	assert.Equal(t, "token_expired", entries[1].Reason)
	assert.True(t, base.Equal(entries[1].OccurredAt))
}
