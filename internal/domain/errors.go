package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not_found")
	ErrValidation            = errors.New("validation")
	ErrSelfConnection        = errors.New("self_connection")
	ErrAlreadyConnected      = errors.New("already_connected")
	ErrRequestAlreadyPending = errors.New("request_already_pending")
	ErrInvalidState          = errors.New("invalid_state")
	ErrNotAuthorized         = errors.New("not_authorized")
	ErrConnectionNotActive   = errors.New("connection_not_active")
	ErrMessageCapReached     = errors.New("message_cap_reached")
	ErrAuthInvalid           = errors.New("auth_invalid")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}
