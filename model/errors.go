package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Canonical error codes carried in the `code` field of API error bodies.
const (
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodeUnprocessableEntity = "unprocessable_entity"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal"
	CodeUnavailable         = "unavailable"
)

// CanonicalCode returns the canonical error code for an HTTP status, or an
// empty string when the status has none.
func CanonicalCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnprocessableEntity:
		return CodeUnprocessableEntity
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusInternalServerError:
		return CodeInternal
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	}
	return ""
}

// ErrCredentialExpired is returned before any request is sent when the
// credential's token carries an expiry in the past.
var ErrCredentialExpired = errors.New("credential token has expired")

// ErrorVariant declares one typed failure an operation can return. Status
// and Code are both optional but at least one must be set; a variant with
// only a Status matches any body code canonical for that status.
type ErrorVariant struct {
	Tag    string
	Status int
	Code   string
}

// OperationError is a declared domain error. It carries the identifying
// fields of the request that produced it.
type OperationError struct {
	Tag       string            `json:"_tag"`
	Operation string            `json:"operation"`
	Status    int               `json:"status"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Tag, e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(" (")
		first := true
		for _, k := range identifyingOrder {
			v, ok := e.Fields[k]
			if !ok {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			fmt.Fprintf(&b, "%s=%s", k, v)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is an OperationError with the same tag. This
// lets sentinels built with Variant be matched with errors.Is.
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	if !ok {
		return false
	}
	return t.Tag != "" && t.Tag == e.Tag
}

// Field returns the identifying field with the given name.
func (e *OperationError) Field(name string) string {
	return e.Fields[name]
}

// Organization returns the organization the failed request addressed.
func (e *OperationError) Organization() string { return e.Fields["organization"] }

// Database returns the database the failed request addressed.
func (e *OperationError) Database() string { return e.Fields["database"] }

// Branch returns the branch the failed request addressed.
func (e *OperationError) Branch() string { return e.Fields["branch"] }

// ID returns the id the failed request addressed.
func (e *OperationError) ID() string { return e.Fields["id"] }

// identifyingOrder is the order identifying fields are printed in.
var identifyingOrder = []string{"organization", "database", "branch", "id", "name", "number", "deploy_request"}

// IdentifyingFields lists the input field names echoed into typed errors.
func IdentifyingFields() []string {
	out := make([]string, len(identifyingOrder))
	copy(out, identifyingOrder)
	return out
}

// Sentinel returns a comparable OperationError for use with errors.Is.
func (v ErrorVariant) Sentinel() *OperationError {
	return &OperationError{Tag: v.Tag, Status: v.Status, Code: v.Code}
}

// APIError is the fallback for failures no declared variant matched.
type APIError struct {
	Operation string `json:"operation"`
	Status    int    `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: api error %d %s: %s", e.Operation, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: api error %d: %s", e.Operation, e.Status, e.Message)
}

// DecodeError reports a success response whose body did not match the
// declared output shape.
type DecodeError struct {
	Operation string
	Status    int
	Body      string
	Err       error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %d response: %v", e.Operation, e.Status, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError reports a failure to obtain any response at all.
type TransportError struct {
	Operation string
	Method    string
	URL       string
	Err       error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Operation, e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error { return e.Err }

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError reports input that failed validation before any request
// was sent.
type ValidationError struct {
	Operation string       `json:"operation"`
	Details   []FieldError `json:"details"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("%s: invalid input: %s", e.Operation, strings.Join(msgs, "; "))
}

// PaginationError reports a page sequence the client refused to follow.
type PaginationError struct {
	Operation string
	Page      int
	Next      int
	Reason    string
}

// Error implements the error interface.
func (e *PaginationError) Error() string {
	return fmt.Sprintf("%s: pagination stopped at page %d (next %d): %s", e.Operation, e.Page, e.Next, e.Reason)
}

// ErrorCode returns the canonical code of a declared or fallback API error,
// or an empty string for any other error.
func ErrorCode(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Code != "" {
			return opErr.Code
		}
		return CanonicalCode(opErr.Status)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code != "" {
			return apiErr.Code
		}
		return CanonicalCode(apiErr.Status)
	}
	return ""
}

// IsNotFound reports whether err is a not_found API error of either kind.
func IsNotFound(err error) bool { return ErrorCode(err) == CodeNotFound }

// IsUnauthorized reports whether err is an unauthorized API error of either kind.
func IsUnauthorized(err error) bool { return ErrorCode(err) == CodeUnauthorized }

// IsForbidden reports whether err is a forbidden API error of either kind.
func IsForbidden(err error) bool { return ErrorCode(err) == CodeForbidden }

// IsAPIError reports whether err is the undeclared fallback error.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
