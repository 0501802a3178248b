package service

import "errors"

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a message fit to show the caller.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string) *ValidationError { return &ValidationError{msg: msg} }

// Messages below are part of the HTTP contract.
var (
	ErrAccessFieldsRequired = invalid("User code and event type are required.")
	ErrInvalidEventType     = invalid("Invalid event type. Must be 'entry' or 'exit'.")
	ErrUserCodeRequired     = invalid("User code is required.")
	ErrInvalidDate          = invalid("Invalid date. Use YYYY-MM-DD.")
	ErrInvalidDateRange     = invalid("start_date must not be after end_date.")
	ErrInvalidTypeFilter    = invalid("Invalid type. Must be 'all', 'entry' or 'exit'.")
	ErrInvalidPage          = invalid("page is out of range.")

	ErrUserNotFound       = errors.New("User not found.")
	ErrDuplicateAccess    = errors.New("Access already recorded for this user moments ago.")
	ErrInvalidCredentials = errors.New("Correo o contraseña incorrectos")
	ErrEmailTaken         = errors.New("El correo ya está registrado")
	ErrCodeTaken          = errors.New("El código de barra ya está registrado")
)
