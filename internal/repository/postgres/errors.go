package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/repository"
)

// PostgreSQL SQLSTATE codes mapped by mapErr.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapErr translates driver errors into repository sentinels.
// Anything else is returned unchanged and treated as a storage failure upstream.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &repository.ConstraintError{Constraint: pgErr.ConstraintName, Kind: apperrors.ErrAlreadyExists, Err: err}
		case pgForeignKeyViolation, pgCheckViolation:
			return &repository.ConstraintError{Constraint: pgErr.ConstraintName, Kind: apperrors.ErrConflict, Err: err}
		}
	}
	return err
}

func affected(n int64, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
