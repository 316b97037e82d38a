// Package common defines shared sentinel errors used across the identity
// service. Callers should use errors.Is to match these values; the human
// readable part of a failure is added by wrapping with fmt.Errorf and %w.
package common

import "errors"

var (
	// Client-caused errors.
	ErrorValidation    = errors.New("validation error")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorNotFound      = errors.New("not found")
	ErrorUnauthorized  = errors.New("unauthorized")

	// Infrastructure errors. Never retried here; surfaced to the caller
	// as server-side failures.
	ErrorStorage  = errors.New("storage error")
	ErrorHashing  = errors.New("hashing error")
	ErrorInternal = errors.New("internal error")
)
