package errors

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrValidation           = errors.New("validation failed")
	ErrNotPending           = errors.New("order already processed")
	ErrNotConfirmed         = errors.New("order is not confirmed")
	ErrOutOfStock           = errors.New("out of stock")
	ErrProductUnavailable   = errors.New("product unavailable")
	ErrKeyInUse             = errors.New("key already used")
	ErrInvalidToken         = errors.New("invalid download token")
	ErrTokenExpired         = errors.New("download token expired")
	ErrDownloadLimitReached = errors.New("download limit reached")
	ErrFileUnavailable      = errors.New("file unavailable")
	ErrNotConfigured        = errors.New("channel not configured")
)

// ValidationError lists the offending fields of a rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
