package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool used by repositories.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AuditEntry is a persisted authentication event.
type AuditEntry struct {
	ID         string
	EventType  string
	Identity   string
	TokenID    string
	Reason     string
	RemoteIP   string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// AuditRepository manages admin authentication audit persistence.
type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]AuditEntry, error)
}

type auditRepository struct {
	db Querier
}

// NewAuditRepository returns a Postgres-backed implementation. Empty optional
// fields are stored as NULL and read back as empty strings.
func NewAuditRepository(db Querier) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *AuditEntry) error {
	const query = `
        INSERT INTO admin_auth_audit (id, event_type, identity, token_id, reason, remote_ip, occurred_at)
        VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
        RETURNING created_at`

	return r.db.QueryRow(ctx, query,
		entry.ID,
		entry.EventType,
		entry.Identity,
		entry.TokenID,
		entry.Reason,
		entry.RemoteIP,
		entry.OccurredAt,
	).Scan(&entry.CreatedAt)
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]AuditEntry, error) {
	const query = `
        SELECT id::text, event_type, COALESCE(identity, ''), COALESCE(token_id, ''),
               COALESCE(reason, ''), COALESCE(remote_ip, ''), occurred_at, created_at
        FROM admin_auth_audit
        ORDER BY occurred_at DESC, created_at DESC
        LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		var entry AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EventType,
			&entry.Identity,
			&entry.TokenID,
			&entry.Reason,
			&entry.RemoteIP,
			&entry.OccurredAt,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
