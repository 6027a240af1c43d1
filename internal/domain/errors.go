package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not_found")
	ErrFriendExists  = errors.New("friend_exists")
	ErrRateLimited   = errors.New("rate_limited")
	ErrValidation    = errors.New("validation")
	ErrTokenExchange = errors.New("token_exchange_failed")
	ErrAthleteFetch  = errors.New("athlete_fetch_failed")

	// Sync failure kinds.
	ErrAuthentication    = errors.New("authentication_failed")
	ErrRemoteUnavailable = errors.New("remote_unavailable")
	ErrStore             = errors.New("store_failure")
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

// SyncError tags a failed synchronization with one of ErrAuthentication,
// ErrRemoteUnavailable or ErrStore. Both the kind and the cause match errors.Is.
type SyncError struct {
	Kind error
	Op   string
	Err  error
}

func (e *SyncError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sync %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("sync %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// SyncErrorKind returns the failure kind of err, defaulting to ErrStore for
// untagged errors.
func SyncErrorKind(err error) error {
	switch {
	case errors.Is(err, ErrAuthentication):
		return ErrAuthentication
	case errors.Is(err, ErrRemoteUnavailable):
		return ErrRemoteUnavailable
	default:
		return ErrStore
	}
}
