// Package services defines the business logic for chat recording, teams,
// events, profiles and prompt configuration. This file centralizes the error
// taxonomy so that every service reports failures the same way.
//
// Every error a service returns matches exactly one kind sentinel via
// errors.Is: ErrValidation, ErrConflict, ErrNotFound or ErrStorageUnavailable.
// Translation into HTTP status codes happens in the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/hackathon-backend/internal/repo"
)

// Error kinds.
var (
	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a uniqueness violation on a natural key.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an unknown id or name.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable marks a failed read or write against the store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error is a service failure of a given Kind with a human-readable Detail.
// Err carries the underlying cause, if any.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return e.Detail + ": " + e.Err.Error()
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the text safe to show to a client (no cause).
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Kind.Error()
}

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}

// storage wraps a repository failure. ErrNotFound from the repo becomes
// notFound so callers never see gorm sentinels.
func storage(err error, notFound *Error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, repo.ErrNotFound) {
		return notFound
	}
	return &Error{Kind: ErrStorageUnavailable, Detail: "storage unavailable", Err: err}
}

// Message recording.
var (
	ErrEmptyBody       = &Error{Kind: ErrValidation, Detail: "message body is empty"}
	ErrInvalidRole     = &Error{Kind: ErrValidation, Detail: "role must be user or bot"}
	ErrMissingCaller   = &Error{Kind: ErrValidation, Detail: "caller id is required"}
	ErrEmptyToken      = &Error{Kind: ErrValidation, Detail: "session token is required"}
	ErrSessionNotFound = &Error{Kind: ErrNotFound, Detail: "session not found"}
	ErrMessageNotFound = &Error{Kind: ErrNotFound, Detail: "message not found"}
)

// Teams.
var (
	ErrTeamNameRequired    = &Error{Kind: ErrValidation, Detail: "team name is required"}
	ErrTeamMembersRequired = &Error{Kind: ErrValidation, Detail: "at least one member is required"}
	ErrTeamExists          = &Error{Kind: ErrConflict, Detail: "team name already taken"}
	ErrTeamNotFound        = &Error{Kind: ErrNotFound, Detail: "team not found"}
)

// Events.
var (
	ErrEventTitleRequired       = &Error{Kind: ErrValidation, Detail: "event title is required"}
	ErrEventDescriptionRequired = &Error{Kind: ErrValidation, Detail: "event description is required"}
	ErrInvalidEventKind         = &Error{Kind: ErrValidation, Detail: "event type must be announcement, schedule_change, deadline or info"}
	ErrInvalidPriority          = &Error{Kind: ErrValidation, Detail: "priority must be low, medium, high or urgent"}
	ErrEventWindow              = &Error{Kind: ErrValidation, Detail: "end time is before start time"}
	ErrInvalidHours             = &Error{Kind: ErrValidation, Detail: "hours must be positive"}
	ErrEventNotFound            = &Error{Kind: ErrNotFound, Detail: "event not found"}
)

// Profiles.
var (
	ErrDisplayNameRequired = &Error{Kind: ErrValidation, Detail: "display name is required"}
	ErrProfileTeamRequired = &Error{Kind: ErrValidation, Detail: "team name is required"}
	ErrInvalidEmail        = &Error{Kind: ErrValidation, Detail: "email is not valid"}
	ErrProfileNotFound     = &Error{Kind: ErrNotFound, Detail: "profile not found"}
)

// Prompts.
var (
	ErrSystemPromptNameRequired    = &Error{Kind: ErrValidation, Detail: "system prompt name is required"}
	ErrSystemPromptContentRequired = &Error{Kind: ErrValidation, Detail: "system prompt content is required"}
	ErrSystemPromptNotFound        = &Error{Kind: ErrNotFound, Detail: "system prompt not found"}
)
