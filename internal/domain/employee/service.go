package employee

import (
	"context"
)

// EmployeeService defines business logic for employee master data
type EmployeeService interface {
	GetEmployee(ctx context.Context, employeeID string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)
}
