package service

import (
	"errors"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
)

var ErrValidation = errors.New("validation failed")

// FieldError is one violated field path and its message.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries every violation found in a payload, in the order
// they were detected.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	return "Request validation failed"
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) add(field, message string) {
	e.Details = append(e.Details, FieldError{Field: field, Message: message})
}

type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return "Order not found"
}

func (e *NotFoundError) Unwrap() error {
	return domain.ErrOrderNotFound
}
