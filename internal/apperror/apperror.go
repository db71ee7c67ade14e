// Package apperror defines the domain errors shared by every layer of the API.
//
// Each error kind is a sentinel (ErrNotFound, ErrUnauthorized, ...) wrapped in
// an *AppError that carries a human-readable message. Callers check the kind
// with errors.Is and read the message with errors.As.
//
// The transports translate kinds into their own vocabulary:
//   - GraphQL: AppError.Extensions() adds {"code": "..."} to the error entry
//   - HTTP:    handler.writeError maps the kind to a status code
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrUnauthorized = errors.New("not authorized")

	// Identity provider failures. See auth.GitHubProvider.
	ErrAuthExchange = errors.New("auth exchange failed")
	ErrTransport    = errors.New("transport error")
	ErrProtocol     = errors.New("protocol error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying error (network failure, decode error)
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause, so errors.Is matches
// apperror.ErrTransport as well as e.g. context.DeadlineExceeded.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Code is the machine-readable name of the error kind.
func (e *AppError) Code() string {
	switch {
	case errors.Is(e.Err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(e.Err, ErrValidation):
		return "BAD_USER_INPUT"
	case errors.Is(e.Err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(e.Err, ErrAuthExchange):
		return "AUTH_EXCHANGE_FAILED"
	case errors.Is(e.Err, ErrTransport):
		return "UPSTREAM_UNAVAILABLE"
	case errors.Is(e.Err, ErrProtocol):
		return "UPSTREAM_PROTOCOL"
	}
	return "INTERNAL"
}

// Extensions is picked up by graph-gophers/graphql-go and rendered into the
// "extensions" object of the GraphQL error entry.
func (e *AppError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code()}
	if e.Field != "" {
		ext["field"] = e.Field
	}
	return ext
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized is returned when a mutation needs a current user and the
// request is anonymous. The message is fixed so clients can tell it apart
// from data errors.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "not authorized",
	}
}

// AuthExchange reports that the identity provider rejected the code and
// returned an explicit message (e.g. "bad_verification_code").
func AuthExchange(message string) *AppError {
	return &AppError{
		Err:     ErrAuthExchange,
		Message: message,
	}
}

// Transport wraps a network-level failure reaching the identity provider.
func Transport(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Message: fmt.Sprintf("%s: %v", op, cause),
		Cause:   cause,
	}
}

// Protocol reports a malformed response from the identity provider.
func Protocol(op string, cause error) *AppError {
	msg := op
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", op, cause)
	}
	return &AppError{
		Err:     ErrProtocol,
		Message: msg,
		Cause:   cause,
	}
}
