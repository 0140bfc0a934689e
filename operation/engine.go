// Package operation is the execution engine behind every API endpoint. A
// Descriptor declares an endpoint; Make and MakePaginated turn it into a
// callable; an Engine supplies the transport and credentials at call time.
package operation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pitabwire/pscale/model"
)

// DefaultMaxPages bounds how many pages a single pagination stream fetches.
const DefaultMaxPages = 10000

// Recorder receives per-call measurements. observability.Metrics
// implements it.
type Recorder interface {
	RecordRequest(operation string, status int, duration time.Duration)
	RecordError(operation, kind string)
	RecordPage(operation string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(string, int, time.Duration) {}
func (nopRecorder) RecordError(string, string)               {}
func (nopRecorder) RecordPage(string)                        {}

// Engine executes operations. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	transport   model.Transport
	credentials model.CredentialProvider
	logger      *zap.Logger
	recorder    Recorder
	userAgent   string
	maxPages    int
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-call logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(e *Engine) { e.userAgent = ua }
}

// WithMaxPages bounds pagination streams. Values below 1 restore the default.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = DefaultMaxPages
		}
		e.maxPages = n
	}
}

// WithClock overrides the clock used for credential expiry checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine that sends through t and authenticates with
// creds.
func NewEngine(t model.Transport, creds model.CredentialProvider, opts ...Option) *Engine {
	e := &Engine{
		transport:   t,
		credentials: creds,
		logger:      zap.NewNop(),
		recorder:    nopRecorder{},
		userAgent:   "pscale-go",
		maxPages:    DefaultMaxPages,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// credential returns the credential for a call: one attached to ctx wins
// over the engine's provider.
func (e *Engine) credential(ctx context.Context, op string) (model.Credential, error) {
	cred, ok := model.CredentialFrom(ctx)
	if !ok {
		if e.credentials == nil {
			return model.Credential{}, fmt.Errorf("operation: %s: no credential provider configured", op)
		}
		var err error
		cred, err = e.credentials.Credential(ctx)
		if err != nil {
			return model.Credential{}, fmt.Errorf("operation: %s: credential: %w", op, err)
		}
	}
	if err := cred.Validate(); err != nil {
		return model.Credential{}, fmt.Errorf("operation: %s: credential: %w", op, err)
	}
	if cred.Expired(e.now()) {
		return model.Credential{}, fmt.Errorf("operation: %s: %w", op, model.ErrCredentialExpired)
	}
	return cred, nil
}

// MaxPages returns the pagination bound.
func (e *Engine) MaxPages() int {
	return e.maxPages
}
