package models

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCategory    = errors.New("invalid movie category")
	ErrNotConfigured      = errors.New("catalog API key is not configured")
)

// ConflictError reports which unique fields collided during registration.
type ConflictError struct {
	HandleTaken bool
	EmailTaken  bool
}

func (e *ConflictError) Error() string {
	switch {
	case e.HandleTaken && e.EmailTaken:
		return "User ID and email are already taken."
	case e.HandleTaken:
		return "User ID is already taken."
	case e.EmailTaken:
		return "Email is already registered."
	default:
		return "User already exists."
	}
}

// IsConflict reports whether err is a registration conflict.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
