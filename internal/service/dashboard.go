package service

import (
	"context"

	"managerh.io/managerh/internal/domain"
	"managerh.io/managerh/internal/pkg/worker"
)

// Dashboard is the tenant overview: both lists in one response.
type Dashboard struct {
	TenantName string             `json:"tenant_name"`
	Employees  []*domain.Employee `json:"employees"`
	Computers  []*domain.Computer `json:"computers"`
}

// DashboardService assembles the tenant overview.
type DashboardService struct {
	employees *EmployeeService
	computers *ComputerService
	pool      *worker.Pool
}

// NewDashboardService creates a DashboardService. pool may be nil.
func NewDashboardService(employees *EmployeeService, computers *ComputerService, pool *worker.Pool) *DashboardService {
	return &DashboardService{employees: employees, computers: computers, pool: pool}
}

// Get loads employees and computers of the caller's tenant. The computer list
// is loaded on the pool while the employee list loads on the caller.
func (s *DashboardService) Get(ctx context.Context, id domain.Identity) (*Dashboard, error) {
	d := &Dashboard{TenantName: id.TenantName}

	if s.pool == nil {
		var err error
		if d.Employees, err = s.employees.List(ctx, id.TenantID); err != nil {
			return nil, err
		}
		if d.Computers, err = s.computers.List(ctx, id.TenantID); err != nil {
			return nil, err
		}
		return d, nil
	}

	computersDone := make(chan error, 1)
	if err := s.pool.Submit(ctx, func(ctx context.Context) {
		var err error
		d.Computers, err = s.computers.List(ctx, id.TenantID)
		computersDone <- err
	}); err != nil {
		return nil, err
	}

	employees, empErr := s.employees.List(ctx, id.TenantID)

	var compErr error
	select {
	case compErr = <-computersDone:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if empErr != nil {
		return nil, empErr
	}
	if compErr != nil {
		return nil, compErr
	}
	d.Employees = employees
	return d, nil
}
