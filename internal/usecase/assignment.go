// Package usecase holds the multi-row operations that must run atomically.
//
// AssignmentEngine owns the one-to-one employee/computer relationship: every
// holder change and the employee deletion cascade run inside one store
// transaction with the affected rows locked. The partial unique index on
// (tenant_id, holder_employee_id) backs the check when two transactions race.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/repository"
	"managerh.io/managerh/internal/service"
	"managerh.io/managerh/internal/validation"
)

// AssignmentEngine enforces the assignment invariants.
type AssignmentEngine struct {
	store      repository.Store
	dispatcher *domain.EventDispatcher
	now        func() time.Time
}

// NewAssignmentEngine creates a new AssignmentEngine. dispatcher may be nil.
func NewAssignmentEngine(store repository.Store, dispatcher *domain.EventDispatcher) *AssignmentEngine {
	return &AssignmentEngine{
		store:      store,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ReassignComputer sets or clears the holder of a computer.
//
// A nil holderID clears the holder; clearing an unheld computer is a no-op.
// Re-selecting the current holder is a no-op. Selecting an employee who holds
// another computer fails with EMPLOYEE_ALREADY_ASSIGNED and changes nothing.
// A new holder moves the computer to assigned.
func (e *AssignmentEngine) ReassignComputer(ctx context.Context, tenantID, computerID string, holderID *string) (*domain.Computer, error) {
	sel := domain.Unassign()
	if holderID != nil {
		sel = domain.AssignTo(strings.TrimSpace(*holderID))
	}

	var (
		result *domain.Computer
		change *domain.AssignmentPayload
	)
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		c, err := tx.Computers().LockForTenant(ctx, computerID, tenantID)
		if err != nil {
			return service.ComputerError(ctx, "reassign computer", computerID, err)
		}

		next := *c
		if err := e.applyHolder(ctx, tx, &next, sel); err != nil {
			return err
		}
		if sameHolder(c.HolderEmployeeID, next.HolderEmployeeID) {
			result = c
			return nil
		}

		if next.HolderEmployeeID != nil {
			next.Status = domain.ComputerStatusAssigned
		} else {
			next.Status = domain.StatusAfterUnassign(c.Status)
		}
		if err := e.write(ctx, tx, &next); err != nil {
			return err
		}
		result = &next
		change = &domain.AssignmentPayload{
			ComputerID:       next.ID,
			PreviousHolderID: c.HolderEmployeeID,
			HolderID:         next.HolderEmployeeID,
			Status:           next.Status,
		}
		return nil
	})
	if err != nil {
		e.rejected(ctx, tenantID, computerID, err)
		return nil, err
	}

	e.changed(ctx, tenantID, change)
	return result, nil
}

// UpdateComputer applies a full edit: hardware address, status and holder
// selection in one transaction.
//
// With no explicit status a newly set holder moves the computer to assigned,
// a cleared holder applies StatusAfterUnassign, and an unchanged holder keeps
// the current status. An assigned computer always ends with a holder.
func (e *AssignmentEngine) UpdateComputer(ctx context.Context, tenantID, computerID string, upd domain.ComputerUpdate) (*domain.Computer, error) {
	if upd.Holder.EmployeeID != nil {
		id := strings.TrimSpace(*upd.Holder.EmployeeID)
		upd.Holder.EmployeeID = &id
	}
	if err := validation.ComputerUpdate(upd); err != nil {
		return nil, err
	}
	address := validation.NormalizeHardwareAddress(upd.HardwareAddress)

	var (
		result *domain.Computer
		change *domain.AssignmentPayload
	)
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		c, err := tx.Computers().LockForTenant(ctx, computerID, tenantID)
		if err != nil {
			return service.ComputerError(ctx, "update computer", computerID, err)
		}

		next := *c
		next.HardwareAddress = address
		if err := e.applyHolder(ctx, tx, &next, upd.Holder); err != nil {
			return err
		}
		holderChanged := !sameHolder(c.HolderEmployeeID, next.HolderEmployeeID)

		switch {
		case upd.Status != nil:
			next.Status = *upd.Status
		case holderChanged && next.HolderEmployeeID != nil:
			next.Status = domain.ComputerStatusAssigned
		case holderChanged:
			next.Status = domain.StatusAfterUnassign(c.Status)
		}
		if next.Status == domain.ComputerStatusAssigned && next.HolderEmployeeID == nil {
			return validation.Collect(validation.StatusHolder(&next.Status, false))
		}

		if err := e.write(ctx, tx, &next); err != nil {
			return err
		}
		result = &next
		if holderChanged {
			change = &domain.AssignmentPayload{
				ComputerID:       next.ID,
				PreviousHolderID: c.HolderEmployeeID,
				HolderID:         next.HolderEmployeeID,
				Status:           next.Status,
			}
		}
		return nil
	})
	if err != nil {
		e.rejected(ctx, tenantID, computerID, err)
		return nil, err
	}

	e.changed(ctx, tenantID, change)
	return result, nil
}

// DeleteEmployee clears the holder of the computer the employee holds, then
// deletes the employee, in one transaction.
func (e *AssignmentEngine) DeleteEmployee(ctx context.Context, tenantID, employeeID string) error {
	var released *domain.Computer
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Employees().LockForTenant(ctx, employeeID, tenantID); err != nil {
			return notFoundOr(ctx, "delete employee", apperrors.KindEmployee, employeeID, err)
		}

		c, err := tx.Computers().LockByHolder(ctx, employeeID, tenantID)
		switch {
		case err == nil:
			c.HolderEmployeeID = nil
			c.Status = domain.StatusAfterUnassign(c.Status)
			c.UpdatedAt = e.now()
			if err := tx.Computers().UpdateForTenant(ctx, c); err != nil {
				return service.StorageError(ctx, "release computer", err)
			}
			released = c
		case errors.Is(err, repository.ErrNotFound):
		default:
			return service.StorageError(ctx, "find held computer", err)
		}

		if err := tx.Employees().DeleteForTenant(ctx, employeeID, tenantID); err != nil {
			return notFoundOr(ctx, "delete employee", apperrors.KindEmployee, employeeID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	payload := domain.EmployeeDeletedPayload{EmployeeID: employeeID}
	if released != nil {
		payload.ReleasedComputerID = &released.ID
		e.changed(ctx, tenantID, &domain.AssignmentPayload{
			ComputerID:       released.ID,
			PreviousHolderID: &employeeID,
			Status:           released.Status,
		})
	}
	data, _ := payload.ToJSON()
	e.dispatch(ctx, domain.NewEvent(domain.EventEmployeeDeleted, tenantID, apperrors.KindEmployee, employeeID, data))

	logger.FromContext(ctx).Info("Employee deleted",
		zap.String("employee_id", employeeID),
		zap.Bool("released_computer", released != nil),
	)
	return nil
}

// DeleteComputer removes a computer. Its holder is not affected.
func (e *AssignmentEngine) DeleteComputer(ctx context.Context, tenantID, computerID string) error {
	if err := e.store.Computers().DeleteForTenant(ctx, computerID, tenantID); err != nil {
		return notFoundOr(ctx, "delete computer", apperrors.KindComputer, computerID, err)
	}
	e.dispatch(ctx, domain.NewEvent(domain.EventComputerDeleted, tenantID, apperrors.KindComputer, computerID, nil))
	return nil
}

// applyHolder resolves sel against the tenant and sets next.HolderEmployeeID.
// For a new holder it locks the employee and checks that no other computer
// of the tenant holds them.
func (e *AssignmentEngine) applyHolder(ctx context.Context, tx repository.Store, next *domain.Computer, sel domain.HolderSelection) error {
	if !sel.Set {
		return nil
	}
	if sel.EmployeeID == nil {
		next.HolderEmployeeID = nil
		return nil
	}

	employeeID := *sel.EmployeeID
	if next.HeldBy(employeeID) {
		return nil
	}

	if _, err := tx.Employees().LockForTenant(ctx, employeeID, next.TenantID); err != nil {
		return notFoundOr(ctx, "lock employee", apperrors.KindEmployee, employeeID, err)
	}

	other, err := tx.Computers().LockByHolder(ctx, employeeID, next.TenantID)
	switch {
	case err == nil && other.ID != next.ID:
		return apperrors.ErrAlreadyAssigned(employeeID)
	case err == nil, errors.Is(err, repository.ErrNotFound):
	default:
		return service.StorageError(ctx, "find held computer", err)
	}

	next.HolderEmployeeID = &employeeID
	return nil
}

// write persists next and maps constraint violations raised by a concurrent writer.
func (e *AssignmentEngine) write(ctx context.Context, tx repository.Store, next *domain.Computer) error {
	next.UpdatedAt = e.now()
	err := tx.Computers().UpdateForTenant(ctx, next)
	if err == nil {
		return nil
	}

	name, _ := repository.ViolatedConstraint(err)
	switch name {
	case repository.ConstraintComputerHolder:
		return apperrors.ErrAlreadyAssigned(*next.HolderEmployeeID)
	case repository.ConstraintComputerHolderFK:
		return apperrors.ErrEntityNotFound(apperrors.KindEmployee, *next.HolderEmployeeID)
	case repository.ConstraintComputerAssignedHolder:
		return validation.Collect(validation.StatusHolder(&next.Status, false))
	}
	return service.ComputerError(ctx, "write computer", next.ID, err, next.HardwareAddress)
}

func (e *AssignmentEngine) rejected(ctx context.Context, tenantID, computerID string, err error) {
	if !apperrors.HasCode(err, apperrors.CodeEmployeeAlreadyAssigned) {
		return
	}
	appErr, _ := apperrors.IsAppError(err)
	logger.FromContext(ctx).Info("Reassignment rejected: employee already holds a computer",
		zap.String("computer_id", computerID),
		zap.Any("employee_id", appErr.Params["employee_id"]),
	)
	e.dispatch(ctx, domain.NewEvent(domain.EventAssignmentRejected, tenantID, apperrors.KindComputer, computerID, nil))
}

func (e *AssignmentEngine) changed(ctx context.Context, tenantID string, p *domain.AssignmentPayload) {
	if p == nil {
		return
	}
	eventType := domain.EventComputerAssigned
	if p.HolderID == nil {
		eventType = domain.EventComputerUnassigned
	}
	data, _ := p.ToJSON()
	e.dispatch(ctx, domain.NewEvent(eventType, tenantID, apperrors.KindComputer, p.ComputerID, data))
}

func (e *AssignmentEngine) dispatch(ctx context.Context, ev *domain.DomainEvent) {
	// handler errors are logged by the dispatcher and never fail the operation
	_ = e.dispatcher.Dispatch(ctx, ev)
}

func notFoundOr(ctx context.Context, op, kind, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrEntityNotFound(kind, id)
	}
	return service.StorageError(ctx, op, err)
}

func sameHolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
