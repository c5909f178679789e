package domain

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTaskNotFound       = errors.New("task not found")

	// ErrValidation is wrapped with the offending field detail, e.g.
	// fmt.Errorf("%w: status must be one of ...", ErrValidation).
	ErrValidation = errors.New("validation failed")
)
