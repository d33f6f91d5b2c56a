package domain

import "errors"

var (
	// ErrValidation reports a missing or invalid required field. The failed
	// operation performs no state change.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateAccount reports a registration with an already-used gmail.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInvalidCredentials reports a failed login lookup.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound reports a missing bill, draft or account.
	ErrNotFound = errors.New("not found")
)
