package session

import (
	"context"
	"fmt"
	"time"

	"managerh.io/managerh/internal/repository/postgres"
)

// PostgresRevoker persists revocations so destroy holds across replicas.
// Expired rows are purged by the session_revocation_cleanup job.
type PostgresRevoker struct {
	queries *postgres.Queries
	now     func() time.Time
}

// NewPostgresRevoker creates a Revoker on the given queries.
func NewPostgresRevoker(queries *postgres.Queries) *PostgresRevoker {
	return &PostgresRevoker{queries: queries, now: func() time.Time { return time.Now().UTC() }}
}

// Revoke implements Revoker.
func (r *PostgresRevoker) Revoke(ctx context.Context, tokenID, tenantID string, expiresAt time.Time) error {
	err := r.queries.InsertSessionRevocation(ctx, postgres.InsertSessionRevocationParams{
		TokenID:   tokenID,
		TenantID:  tenantID,
		ExpiresAt: expiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert session revocation: %w", err)
	}
	return nil
}

// IsRevoked implements Revoker.
func (r *PostgresRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	revoked, err := r.queries.IsSessionRevoked(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("query session revocation: %w", err)
	}
	return revoked, nil
}

// Purge deletes revocations of tokens that have expired.
func (r *PostgresRevoker) Purge(ctx context.Context) (int64, error) {
	n, err := r.queries.DeleteExpiredSessionRevocations(ctx, r.now())
	if err != nil {
		return 0, fmt.Errorf("purge session revocations: %w", err)
	}
	return n, nil
}
