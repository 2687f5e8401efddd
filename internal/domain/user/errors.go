package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidRole             = errors.New("invalid role")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrPayrollAccessRequired   = errors.New("payroll access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrEmployeeIDRequired      = errors.New("employee_id claim is required")
)
