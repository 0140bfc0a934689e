package model

import (
	"context"
	"net/http"
)

// Request is a transport-agnostic outbound request built from an
// operation's input.
type Request struct {
	Operation string
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
}

// Response is the raw result of a round trip.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport sends a single request and returns the raw response. An error
// means no response was obtained; any HTTP status is a successful send.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (Response, error)

// Send calls f(ctx, req).
func (f TransportFunc) Send(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
