package observability

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"managerh.io/managerh/internal/domain"
	"managerh.io/managerh/internal/pkg/logger"
)

// Assignment change kinds.
const (
	ChangeAssigned   = "assigned"
	ChangeUnassigned = "unassigned"
	ChangeReleased   = "released_on_delete"
)

// RegisterEventHandlers subscribes the metric and log handlers to d.
func RegisterEventHandlers(d *domain.EventDispatcher) {
	d.Register(onAssignmentRejected, domain.EventAssignmentRejected)
	d.Register(onAssignmentChanged, domain.EventComputerAssigned, domain.EventComputerUnassigned)
	d.Register(onEmployeeDeleted, domain.EventEmployeeDeleted)
	d.Register(logEvent,
		domain.EventTenantRegistered,
		domain.EventComputerAssigned,
		domain.EventComputerUnassigned,
		domain.EventAssignmentRejected,
		domain.EventEmployeeDeleted,
		domain.EventComputerDeleted,
	)
}

func onAssignmentRejected(context.Context, *domain.DomainEvent) error {
	ObserveAssignmentConflict()
	return nil
}

func onAssignmentChanged(_ context.Context, e *domain.DomainEvent) error {
	if e.EventType == domain.EventComputerAssigned {
		ObserveAssignmentChange(ChangeAssigned)
	} else {
		ObserveAssignmentChange(ChangeUnassigned)
	}
	return nil
}

func onEmployeeDeleted(_ context.Context, e *domain.DomainEvent) error {
	var p domain.EmployeeDeletedPayload
	if err := decodePayload(e, &p); err != nil {
		return err
	}
	if p.ReleasedComputerID != nil {
		ObserveAssignmentChange(ChangeReleased)
	}
	return nil
}

func logEvent(ctx context.Context, e *domain.DomainEvent) error {
	logger.FromContext(ctx).Info("domain event",
		zap.String("event_id", e.EventID),
		zap.String("event_type", string(e.EventType)),
		zap.String(logger.FieldTenantID, e.TenantID),
		zap.String("aggregate_type", e.AggregateType),
		zap.String("aggregate_id", e.AggregateID),
	)
	return nil
}

func decodePayload(e *domain.DomainEvent, v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return nil
}
