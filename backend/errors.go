package main

import (
	"errors"
	"net/http"
)

// Recoverable game errors: the caller can retry with different input.
// Handlers map them to 4xx; anything else is a 500. Invariant violations
// panic instead of returning one of these.
var (
	ErrInvalidSelection        = errors.New("invalid selection")
	ErrIllegalDestination      = errors.New("illegal destination")
	ErrInvalidConversionTarget = errors.New("invalid conversion target")
	ErrActionWhileLocked       = errors.New("action while locked")
)

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidSelection),
		errors.Is(err, ErrIllegalDestination),
		errors.Is(err, ErrInvalidConversionTarget):
		return http.StatusBadRequest
	case errors.Is(err, ErrActionWhileLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
