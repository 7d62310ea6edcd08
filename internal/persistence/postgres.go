package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/moderation-service/internal/config"
)

// AuditPostgres wraps the pgx pool backing the append-only audit log.
type AuditPostgres struct {
	Pool *pgxpool.Pool
}

// NewAuditPostgres establishes the audit pool when a DSN is provided.
// Audit logging is optional; a nil pool disables it.
func NewAuditPostgres(ctx context.Context, cfg config.AuditDBConfig, logger *zap.Logger) (*AuditPostgres, error) {
	if cfg.DSN == "" {
		logger.Warn("AUDIT_POSTGRES_DSN not provided; audit logging disabled")
		return &AuditPostgres{Pool: nil}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to audit postgres")
	return &AuditPostgres{Pool: pool}, nil
}

// Close releases pool resources.
func (p *AuditPostgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// PoolHandle returns the underlying pgx pool.
func (p *AuditPostgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}
