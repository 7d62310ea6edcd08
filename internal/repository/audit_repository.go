package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEntry is one append-only audit trail record.
type AuditEntry struct {
	ID         int64
	IssuerName string
	TargetUUID string
	Action     string
	Detail     string
	TicketID   *string
	CreatedAt  time.Time
}

// AuditLogRepository records moderation actions. Callers treat writes as
// fire-and-forget; failures must never abort the action being audited.
type AuditLogRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByTarget(ctx context.Context, targetUUID string, limit int) ([]AuditEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository instantiates repository. A nil pool disables
// auditing; Record becomes a no-op.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Record(ctx context.Context, entry *AuditEntry) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO audit_log (issuer_name, target_uuid, action, detail, ticket_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.IssuerName,
		entry.TargetUUID,
		entry.Action,
		entry.Detail,
		entry.TicketID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByTarget(ctx context.Context, targetUUID string, limit int) ([]AuditEntry, error) {
	if r.pool == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, issuer_name, target_uuid, action, detail, ticket_id, created_at
        FROM audit_log WHERE target_uuid=$1
        ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, targetUUID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.IssuerName,
			&entry.TargetUUID,
			&entry.Action,
			&entry.Detail,
			&entry.TicketID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
