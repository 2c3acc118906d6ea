package service

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-property-listing/store"
)

// Text codes attached to service errors.
const (
	TextCodeValidation   = "VALIDATION_FAILED"
	TextCodeBadRequest   = "BAD_REQUEST"
	TextCodeNotFound     = "NOT_FOUND"
	TextCodeConflict     = "CONFLICT"
	TextCodeForbidden    = "FORBIDDEN"
	TextCodeUnauthorized = "UNAUTHORIZED"
	TextCodeTokenExpired = "REFRESH_TOKEN_EXPIRED"
	TextCodeTokenInvalid = "REFRESH_TOKEN_INVALID"
	TextCodeInternal     = "INTERNAL_ERROR"
)

func badRequest(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeBadRequest)
}

func invalid(err error, message string) error {
	return goerrors.FromOzzoValidation(err, message).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeValidation)
}

func notFound(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeNotFound)
}

func conflict(message string) error {
	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeConflict)
}

func forbidden(message string) error {
	return forbiddenCode(message, TextCodeForbidden)
}

func forbiddenCode(message, textCode string) error {
	return goerrors.New(message, goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(textCode)
}

func unauthorized(message, textCode string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(textCode)
}

// internal hides the store error behind a generic message. The source is
// kept for logging.
func internal(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeInternal)
}

// storeError maps the store sentinels onto the service taxonomy.
func storeError(err error, notFoundMessage, conflictMessage, internalMessage string) error {
	switch {
	case isNotFound(err):
		return notFound(notFoundMessage)
	case isDuplicate(err):
		return conflict(conflictMessage)
	default:
		return internal(err, internalMessage)
	}
}

func isNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, store.ErrDuplicate) }
