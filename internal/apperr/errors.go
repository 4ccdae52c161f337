// Package apperr holds the sentinel errors shared across localref packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidName   = errors.New("invalid file name")
	ErrForbidden     = errors.New("forbidden")

	// ErrNoSelection is a normal terminal outcome, not a failure: the
	// picker was cancelled or returned nothing.
	ErrNoSelection = errors.New("no file selected")

	ErrSourceNotFound         = errors.New("source file not found")
	ErrIO                     = errors.New("i/o error")
	ErrDestinationUnavailable = errors.New("destination unavailable")
	ErrLinkGeneration         = errors.New("link generation failed")
)
