package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
)

// StorageError logs a persistence failure and hides it behind STORAGE_UNAVAILABLE.
// AppErrors and context errors pass through unchanged.
func StorageError(ctx context.Context, op string, err error) error {
	if _, ok := apperrors.IsAppError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.FromContext(ctx).Error("Storage operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	return apperrors.ErrStorageUnavailable(err)
}
