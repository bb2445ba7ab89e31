package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/repository"
	"managerh.io/managerh/internal/validation"
)

// ComputerService handles computer reads and creation inside one tenant.
// Edits that touch the holder go through usecase.AssignmentEngine.
type ComputerService struct {
	store repository.Store
	now   func() time.Time
}

// NewComputerService creates a new ComputerService.
func NewComputerService(store repository.Store) *ComputerService {
	return &ComputerService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns the tenant's computers ordered by hardware address, each with its holder.
func (s *ComputerService) List(ctx context.Context, tenantID string) ([]*domain.Computer, error) {
	list, err := s.store.Computers().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, StorageError(ctx, "list computers", err)
	}
	return list, nil
}

// Get returns one computer of the tenant.
func (s *ComputerService) Get(ctx context.Context, tenantID, id string) (*domain.Computer, error) {
	c, err := s.store.Computers().GetForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, ComputerError(ctx, "get computer", id, err)
	}
	return c, nil
}

// Create registers a new available computer with no holder.
func (s *ComputerService) Create(ctx context.Context, tenantID, hardwareAddress string) (*domain.Computer, error) {
	if err := validation.Collect(validation.HardwareAddress(hardwareAddress)); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate computer id: %w", err)
	}
	now := s.now()
	c := &domain.Computer{
		ID:              id.String(),
		TenantID:        tenantID,
		HardwareAddress: validation.NormalizeHardwareAddress(hardwareAddress),
		Status:          domain.ComputerStatusAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Computers().Create(ctx, c); err != nil {
		return nil, ComputerError(ctx, "create computer", c.ID, err, c.HardwareAddress)
	}

	logger.FromContext(ctx).Info("Computer created", zap.String("computer_id", c.ID))
	return c, nil
}

// ComputerError maps repository failures on a computer write to AppErrors.
// address is used for the duplicate-address error when provided.
func ComputerError(ctx context.Context, op, id string, err error, address ...string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrEntityNotFound(apperrors.KindComputer, id)
	}
	if name, ok := repository.ViolatedConstraint(err); ok && name == repository.ConstraintComputerHardwareAddr {
		addr := ""
		if len(address) > 0 {
			addr = address[0]
		}
		return apperrors.ErrHardwareAddressTaken(addr)
	}
	return StorageError(ctx, op, err)
}
