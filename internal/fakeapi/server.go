// Package fakeapi is an in-process fake of the platform API for tests. Each
// route is a declared operation whose responses are scripted in order; all
// received requests are recorded for assertion.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Route maps an operation id to its method and path pattern. Patterns use
// {name} placeholders, the same syntax chi routes with.
type Route struct {
	Operation string
	Method    string
	Pattern   string
}

// RecordedRequest captures one request received by the server.
type RecordedRequest struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      map[string]string
	Headers    http.Header
	Body       map[string]any
	RawBody    []byte
	ReceivedAt time.Time
}

type scripted struct {
	status    int
	body      any
	raw       []byte
	delay     time.Duration
	connError bool
	header    http.Header
}

type operationScript struct {
	responses []*scripted
	current   int
}

// Server is the fake API.
type Server struct {
	server *httptest.Server
	token  string

	mu       sync.Mutex
	scripts  map[string]*operationScript
	received map[string][]*RecordedRequest
}

// Option configures a Server.
type Option func(*Server)

// WithToken makes the server reject requests whose bearer token differs
// with 401 unauthorized.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// New starts a fake serving routes and registers its shutdown with t.
func New(t testing.TB, routes []Route, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		scripts:  make(map[string]*operationScript),
		received: make(map[string][]*RecordedRequest),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.authenticate)
	for _, route := range routes {
		r.MethodFunc(route.Method, route.Pattern, s.handle(route.Operation))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"code":    "not_found",
			"message": fmt.Sprintf("fakeapi: no route for %s %s", r.Method, r.URL.Path),
		})
	})

	s.server = httptest.NewServer(r)
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL of the server.
func (s *Server) URL() string { return s.server.URL }

// Client returns an HTTP client configured for the server.
func (s *Server) Client() *http.Client { return s.server.Client() }

// Responder scripts responses for one operation.
type Responder struct {
	server *Server
	op     string
}

// On returns a responder for the named operation.
func (s *Server) On(operation string) *Responder {
	return &Responder{server: s, op: operation}
}

// RespondWith appends a JSON response.
func (r *Responder) RespondWith(status int, body any) *Responder {
	r.server.add(r.op, &scripted{status: status, body: body})
	return r
}

// RespondRaw appends a response with a literal body.
func (r *Responder) RespondRaw(status int, body string) *Responder {
	r.server.add(r.op, &scripted{status: status, raw: []byte(body)})
	return r
}

// RespondWithError appends an error body in the API's {code, message} form.
func (r *Responder) RespondWithError(status int, code, message string) *Responder {
	return r.RespondWith(status, map[string]string{"code": code, "message": message})
}

// RespondWithHeaders appends a JSON response with extra headers.
func (r *Responder) RespondWithHeaders(status int, body any, header http.Header) *Responder {
	r.server.add(r.op, &scripted{status: status, body: body, header: header})
	return r
}

// RespondWithDelay appends a response sent after delay.
func (r *Responder) RespondWithDelay(delay time.Duration, status int, body any) *Responder {
	r.server.add(r.op, &scripted{status: status, body: body, delay: delay})
	return r
}

// RespondWithConnectionError appends a response that closes the connection
// without answering.
func (r *Responder) RespondWithConnectionError() *Responder {
	r.server.add(r.op, &scripted{connError: true})
	return r
}

// RespondWithPages appends one page envelope per element of pages, linking
// them with next_page so the last page is terminal.
func (r *Responder) RespondWithPages(pages ...[]any) *Responder {
	for i, data := range pages {
		if data == nil {
			data = []any{}
		}
		page := map[string]any{
			"current_page": i + 1,
			"next_page":    nil,
			"prev_page":    nil,
			"data":         data,
		}
		if i+1 < len(pages) {
			page["next_page"] = i + 2
		}
		if i > 0 {
			page["prev_page"] = i
		}
		r.RespondWith(http.StatusOK, page)
	}
	return r
}

func (s *Server) add(op string, resp *scripted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	script, ok := s.scripts[op]
	if !ok {
		script = &operationScript{}
		s.scripts[op] = script
	}
	script.responses = append(script.responses, resp)
}

// next returns the next scripted response. The last one repeats once the
// script is exhausted.
func (s *Server) next(op string) *scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	script, ok := s.scripts[op]
	if !ok || len(script.responses) == 0 {
		return nil
	}
	idx := script.current
	if idx >= len(script.responses) {
		idx = len(script.responses) - 1
	} else {
		script.current++
	}
	return script.responses[idx]
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token != s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"code":    "unauthorized",
				"message": "invalid service token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handle(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &RecordedRequest{
			Method:     r.Method,
			Path:       r.URL.Path,
			PathParams: make(map[string]string),
			Query:      make(map[string]string),
			Headers:    r.Header.Clone(),
			ReceivedAt: time.Now(),
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				rec.PathParams[key] = rctx.URLParams.Values[i]
			}
		}
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				rec.Query[key] = values[0]
			}
		}
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			rec.RawBody = body
			if len(body) > 0 {
				var parsed map[string]any
				if err := json.Unmarshal(body, &parsed); err == nil {
					rec.Body = parsed
				}
			}
		}

		s.mu.Lock()
		s.received[op] = append(s.received[op], rec)
		s.mu.Unlock()

		resp := s.next(op)
		if resp == nil {
			writeJSON(w, http.StatusNotImplemented, map[string]string{
				"code":    "not_implemented",
				"message": "fakeapi: no response scripted for " + op,
			})
			return
		}

		if resp.connError {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, _ := hj.Hijack(); conn != nil {
					conn.Close()
				}
			}
			return
		}
		if resp.delay > 0 {
			select {
			case <-time.After(resp.delay):
			case <-r.Context().Done():
				return
			}
		}

		for k, vs := range resp.header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		if resp.raw != nil {
			w.WriteHeader(resp.status)
			_, _ = w.Write(resp.raw)
			return
		}
		writeJSON(w, resp.status, resp.body)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Calls returns how many times operation was received.
func (s *Server) Calls(operation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received[operation])
}

// AssertCalled verifies that the operation was called the expected number of times.
func (s *Server) AssertCalled(t testing.TB, operation string, expected int) {
	t.Helper()
	if actual := s.Calls(operation); actual != expected {
		t.Errorf("fakeapi: operation %q called %d times, want %d", operation, actual, expected)
	}
}

// LastRequest returns the last request received for operation, or nil.
func (s *Server) LastRequest(operation string) *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := s.received[operation]
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

// Requests returns every request received for operation, in order.
func (s *Server) Requests(operation string) []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := s.received[operation]
	copied := make([]*RecordedRequest, len(reqs))
	copy(copied, reqs)
	return copied
}

// Reset clears scripts and recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = make(map[string]*operationScript)
	s.received = make(map[string][]*RecordedRequest)
}
