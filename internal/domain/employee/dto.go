package employee

import (
	"strings"
	"time"

	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	EmployeeID   string  `json:"employee_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BankClearing *string `json:"bank_clearing,omitempty"`
	BankAccount  *string `json:"bank_account,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	} else if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: ErrInvalidEmployeeID.Error()})
	}

	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "first_name", Message: "first_name is required"})
	}
	if validator.IsEmpty(r.LastName) {
		errs = append(errs, validator.ValidationError{Field: "last_name", Message: "last_name is required"})
	}

	errs = append(errs, validateContact(r.Email, r.Phone, r.BankClearing)...)

	if r.ManagerID != nil && *r.ManagerID == r.EmployeeID {
		errs = append(errs, validator.ValidationError{Field: "manager_id", Message: ErrCannotManageYourself.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	EmployeeID   string  `json:"-"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BankClearing *string `json:"bank_clearing,omitempty"`
	BankAccount  *string `json:"bank_account,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "first_name", Message: "first_name must not be empty"})
	}
	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs = append(errs, validator.ValidationError{Field: "last_name", Message: "last_name must not be empty"})
	}

	errs = append(errs, validateContact(r.Email, r.Phone, r.BankClearing)...)

	if r.ManagerID != nil && *r.ManagerID == r.EmployeeID {
		errs = append(errs, validator.ValidationError{Field: "manager_id", Message: ErrCannotManageYourself.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateContact(email, phone, clearing *string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if email != nil && !validator.IsValidEmail(*email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "invalid email format"})
	}
	if phone != nil && !validator.IsValidPhoneNumber(*phone) {
		errs = append(errs, validator.ValidationError{Field: "phone", Message: ErrInvalidPhoneNumber.Error()})
	}
	if clearing != nil && !validator.IsValidClearingNumber(*clearing) {
		errs = append(errs, validator.ValidationError{Field: "bank_clearing", Message: ErrInvalidClearing.Error()})
	}
	return errs
}

type EmployeeFilter struct {
	Search     *string `json:"search,omitempty"`
	ManagerID  *string `json:"manager_id,omitempty"`
	ActiveOnly bool    `json:"active_only"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
}

type EmployeeResponse struct {
	EmployeeID   string  `json:"employee_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	FullName     string  `json:"full_name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BankClearing *string `json:"bank_clearing,omitempty"`
	BankAccount  *string `json:"bank_account,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:   e.EmployeeID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		FullName:     e.FullName(),
		Email:        e.Email,
		Phone:        e.Phone,
		BankClearing: e.BankClearing,
		BankAccount:  e.BankAccount,
		ManagerID:    e.ManagerID,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
}
