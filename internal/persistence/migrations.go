package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var auditMigrations = []string{
	`CREATE TABLE IF NOT EXISTS audit_log (
        id BIGSERIAL PRIMARY KEY,
        issuer_name TEXT NOT NULL,
        target_uuid TEXT NOT NULL,
        action TEXT NOT NULL,
        detail TEXT NOT NULL DEFAULT '',
        ticket_id TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_target ON audit_log (target_uuid, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_issuer ON audit_log (issuer_name, created_at DESC)`,
}

// RunMigrations applies the audit-log schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		return nil
	}
	for _, stmt := range auditMigrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	logger.Info("audit migrations applied")
	return nil
}
