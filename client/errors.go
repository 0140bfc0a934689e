package client

import (
	"net/http"

	"github.com/pitabwire/pscale/model"
)

// failure is one kind of declared error shared across endpoints.
type failure struct {
	suffix string
	status int
	code   string
}

var (
	unauthorized  = failure{"Unauthorized", http.StatusUnauthorized, model.CodeUnauthorized}
	forbidden     = failure{"Forbidden", http.StatusForbidden, model.CodeForbidden}
	notFound      = failure{"NotFound", http.StatusNotFound, model.CodeNotFound}
	conflict      = failure{"Conflict", http.StatusConflict, model.CodeConflict}
	unprocessable = failure{"UnprocessableEntity", http.StatusUnprocessableEntity, model.CodeUnprocessableEntity}
)

// readFailures are declared by every endpoint.
var readFailures = []failure{unauthorized, forbidden, notFound}

// writeFailures are declared by endpoints that create or change resources.
var writeFailures = []failure{unauthorized, forbidden, notFound, unprocessable, conflict}

// declare builds the ordered variants for an endpoint. Tags are the
// endpoint prefix followed by the failure kind, e.g. GetBranchNotFound.
func declare(prefix string, failures []failure) []model.ErrorVariant {
	variants := make([]model.ErrorVariant, 0, len(failures))
	for _, f := range failures {
		variants = append(variants, model.ErrorVariant{
			Tag:    prefix + f.suffix,
			Status: f.status,
			Code:   f.code,
		})
	}
	return variants
}

// sentinel returns a value matching the prefix+kind variant with errors.Is.
func sentinel(prefix string, f failure) *model.OperationError {
	return model.ErrorVariant{Tag: prefix + f.suffix, Status: f.status, Code: f.code}.Sentinel()
}
