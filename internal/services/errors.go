// Package services holds the business rules of both apps. Every operation
// takes the caller explicitly; nothing is read from request state.
package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/store"
)

var (
	ErrInvalidID    = errors.New("invalid id")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ValidationError lists field problems; it matches ErrValidation.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string, details ...string) error {
	return &ValidationError{Message: message, Details: details}
}

// NotFoundError names the missing entity; it matches ErrNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// storeErr maps store.ErrNotFound to a NotFoundError for entity and wraps
// anything else.
func storeErr(entity string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(entity)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// ParseID converts a hex id, reporting ErrInvalidID for malformed input.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// ForbiddenError carries the reason shown to the caller; it matches
// ErrForbidden.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

func forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}
