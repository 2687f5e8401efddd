package employee

import (
	"strings"
	"time"
)

type Employee struct {
	EmployeeID   string
	FirstName    string
	LastName     string
	Email        *string
	Phone        *string
	BankClearing *string
	BankAccount  *string
	ManagerID    *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name, skipping empty parts.
func (e Employee) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}
