// Package invoker provides the default net/http transport that carries
// built requests to the API.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/internal/config"
	"github.com/pitabwire/pscale/model"
)

// ErrResponseTooLarge is returned when a response body exceeds the
// configured limit.
var ErrResponseTooLarge = errors.New("invoker: response body exceeds limit")

// ErrUnreachable marks connection and DNS failures.
var ErrUnreachable = errors.New("invoker: api unreachable")

// HTTPTransport sends requests with a pooled http.Client. It performs no
// retries and keeps no per-call state.
type HTTPTransport struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPTransport creates a transport from the HTTP settings.
func NewHTTPTransport(cfg config.HTTPConfig) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &HTTPTransport{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        cfg.MaxIdleConns,
				IdleConnTimeout:     cfg.IdleConnTimeout,
				TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
			},
		},
		maxBytes: maxBytes,
	}
}

// NewHTTPTransportWithClient wraps an existing client, e.g. one returned by
// httptest.Server.Client.
func NewHTTPTransportWithClient(client *http.Client, maxBytes int64) *HTTPTransport {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &HTTPTransport{client: client, maxBytes: maxBytes}
}

// Send performs a single HTTP round trip. Non-2xx statuses are not errors
// at this layer; only failures to obtain a response are.
func (t *HTTPTransport) Send(ctx context.Context, req model.Request) (model.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return model.Response{}, fmt.Errorf("invoker: build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return model.Response{}, fmt.Errorf("invoker: request canceled: %w", ctx.Err())
		}
		if isConnectionError(err) {
			return model.Response{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		return model.Response{}, fmt.Errorf("invoker: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return model.Response{}, fmt.Errorf("invoker: read response: %w", err)
	}
	if int64(len(respBody)) > t.maxBytes {
		return model.Response{}, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, t.maxBytes)
	}

	return model.Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   respBody,
	}, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
