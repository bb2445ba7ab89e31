package postgres

import (
	"context"
	"time"
)

const insertSessionRevocation = `
INSERT INTO session_revocations (token_id, tenant_id, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (token_id) DO NOTHING`

type InsertSessionRevocationParams struct {
	TokenID   string
	TenantID  string
	ExpiresAt time.Time
}

func (q *Queries) InsertSessionRevocation(ctx context.Context, arg InsertSessionRevocationParams) error {
	_, err := q.db.Exec(ctx, insertSessionRevocation, arg.TokenID, arg.TenantID, arg.ExpiresAt)
	return err
}

const isSessionRevoked = `SELECT EXISTS (SELECT 1 FROM session_revocations WHERE token_id = $1)`

func (q *Queries) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := q.db.QueryRow(ctx, isSessionRevoked, tokenID).Scan(&revoked)
	return revoked, err
}

const deleteExpiredSessionRevocations = `DELETE FROM session_revocations WHERE expires_at < $1`

func (q *Queries) DeleteExpiredSessionRevocations(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.Exec(ctx, deleteExpiredSessionRevocations, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
