package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestCanonicalCode(t *testing.T) {
	tests := map[int]string{
		401: CodeUnauthorized,
		403: CodeForbidden,
		404: CodeNotFound,
		409: CodeConflict,
		422: CodeUnprocessableEntity,
		429: CodeRateLimited,
		500: CodeInternal,
		503: CodeUnavailable,
		418: "",
		200: "",
	}
	for status, want := range tests {
		if got := CanonicalCode(status); got != want {
			t.Errorf("CanonicalCode(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestOperationError_Error(t *testing.T) {
	e := &OperationError{
		Tag:     "GetBranchNotFound",
		Message: "branch not found",
		Fields: map[string]string{
			"branch":       "dev",
			"organization": "acme",
			"database":     "app",
		},
	}
	want := "GetBranchNotFound: branch not found (organization=acme, database=app, branch=dev)"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestOperationError_ErrorWithoutFields(t *testing.T) {
	e := &OperationError{Tag: "ListDatabasesForbidden", Message: "Forbidden"}
	if got := e.Error(); got != "ListDatabasesForbidden: Forbidden" {
		t.Errorf("Error() = %q", got)
	}
}

func TestOperationError_Is(t *testing.T) {
	notFound := ErrorVariant{Tag: "GetBranchNotFound", Status: 404}
	forbidden := ErrorVariant{Tag: "GetBranchForbidden", Status: 403}

	var err error = &OperationError{Tag: "GetBranchNotFound", Status: 404, Message: "gone"}
	wrapped := fmt.Errorf("loading: %w", err)

	if !errors.Is(wrapped, notFound.Sentinel()) {
		t.Error("errors.Is should match the sentinel through wrapping")
	}
	if errors.Is(wrapped, forbidden.Sentinel()) {
		t.Error("errors.Is must not match a different tag")
	}
	if errors.Is(err, &OperationError{}) {
		t.Error("an untagged target must not match")
	}
}

func TestOperationError_accessors(t *testing.T) {
	e := &OperationError{Fields: map[string]string{
		"organization": "acme",
		"database":     "app",
		"branch":       "main",
		"id":           "dr1",
		"number":       "7",
	}}
	if e.Organization() != "acme" || e.Database() != "app" || e.Branch() != "main" || e.ID() != "dr1" {
		t.Errorf("accessors = %s %s %s %s", e.Organization(), e.Database(), e.Branch(), e.ID())
	}
	if e.Field("number") != "7" || e.Field("missing") != "" {
		t.Errorf("Field() = %q %q", e.Field("number"), e.Field("missing"))
	}
}

func TestIdentifyingFields_returnsCopy(t *testing.T) {
	a := IdentifyingFields()
	a[0] = "mutated"
	if IdentifyingFields()[0] != "organization" {
		t.Error("IdentifyingFields exposes internal state")
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		err  *APIError
		want string
	}{
		{&APIError{Operation: "listDatabases", Status: 503, Code: "unavailable", Message: "down"}, "listDatabases: api error 503 unavailable: down"},
		{&APIError{Operation: "listDatabases", Status: 502, Message: "Bad Gateway"}, "listDatabases: api error 502: Bad Gateway"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDecodeAndTransportErrors_unwrap(t *testing.T) {
	cause := errors.New("boom")
	if !errors.Is(&DecodeError{Operation: "x", Err: cause}, cause) {
		t.Error("DecodeError should unwrap to its cause")
	}
	if !errors.Is(&TransportError{Operation: "x", Err: cause}, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{
		Operation: "createDatabase",
		Details: []FieldError{
			{Field: "name", Code: "required", Message: "required"},
			{Field: "per_page", Code: "max", Message: "must be at most 100"},
		},
	}
	want := "createDatabase: invalid input: name: required; per_page: must be at most 100"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPaginationError_Error(t *testing.T) {
	e := &PaginationError{Operation: "listBranches", Page: 4, Next: 4, Reason: "next page does not advance"}
	want := "listBranches: pagination stopped at page 4 (next 4): next page does not advance"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorCode_helpers(t *testing.T) {
	declared := fmt.Errorf("wrap: %w", &OperationError{Tag: "T", Status: 404})
	fallback := &APIError{Status: 401}
	forbidden := &APIError{Status: 400, Code: CodeForbidden}

	if ErrorCode(declared) != CodeNotFound || !IsNotFound(declared) {
		t.Errorf("declared: ErrorCode = %q", ErrorCode(declared))
	}
	if !IsUnauthorized(fallback) || !IsAPIError(fallback) {
		t.Error("fallback 401 should be unauthorized and an APIError")
	}
	if !IsForbidden(forbidden) {
		t.Error("body code should win over status")
	}
	if IsAPIError(declared) {
		t.Error("declared errors are not APIError")
	}
	if ErrorCode(errors.New("plain")) != "" {
		t.Error("plain errors have no code")
	}
}
