package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the target record or edge does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned on duplicate membership edges.
	ErrAlreadyExists = errors.New("already exists")
	// ErrPermissionDenied is returned when a non-author, non-admin user
	// mutates a recipe.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSelfSubscribe is returned when a user subscribes to themselves.
	ErrSelfSubscribe = errors.New("cannot subscribe to yourself")
	// ErrEmptyCart is returned when a shopping list is requested for an
	// empty cart.
	ErrEmptyCart = errors.New("shopping cart is empty")
	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a rejected input field. It unwraps to nothing;
// handlers detect it with errors.As and surface a 400 with the field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
