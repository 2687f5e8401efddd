package employee

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrEmployeeIDExists     = errors.New("employee id already exists")
	ErrEmailExists          = errors.New("email already registered")
	ErrInvalidEmployeeID    = errors.New("invalid employee id format")
	ErrInvalidPhoneNumber   = errors.New("invalid Swedish phone number")
	ErrInvalidClearing      = errors.New("clearing number must be 4 or 5 digits")
	ErrManagerNotFound      = errors.New("manager not found")
	ErrCannotManageYourself = errors.New("employee cannot be their own manager")
)
