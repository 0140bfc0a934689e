package main

import (
	"errors"
	"net/http"

	"github.com/pitabwire/pscale/model"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// usageError marks bad flags, arguments or configuration.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps an error to an exit code: problems the caller can fix exit
// 1, failures of the API or the network exit 2.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var (
		usage  usageError
		trErr  *model.TransportError
		decErr *model.DecodeError
		pagErr *model.PaginationError
		apiErr *model.APIError
		opErr  *model.OperationError
	)
	switch {
	case errors.As(err, &usage):
		return exitUserError
	case errors.As(err, &trErr), errors.As(err, &decErr), errors.As(err, &pagErr):
		return exitSysError
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusInternalServerError {
			return exitSysError
		}
	case errors.As(err, &opErr):
		if opErr.Status >= http.StatusInternalServerError {
			return exitSysError
		}
	}
	return exitUserError
}
