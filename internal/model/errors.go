package model

import "errors"

// Domain error taxonomy. Services wrap these with context via fmt.Errorf and
// handlers translate them to HTTP status codes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("service unavailable")
)
