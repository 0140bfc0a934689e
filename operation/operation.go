package operation

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pitabwire/pscale/internal/observability"
	"github.com/pitabwire/pscale/model"
)

// Operation is one callable endpoint. The descriptor is resolved from its
// thunk on first use so descriptors may refer to types declared after them.
type Operation[In, Out any] struct {
	descriptor func() Descriptor[In]
}

// Make builds an operation from a descriptor thunk. The thunk runs once;
// an inconsistent descriptor panics on first use.
func Make[In, Out any](thunk func() Descriptor[In]) *Operation[In, Out] {
	return &Operation[In, Out]{
		descriptor: sync.OnceValue(func() Descriptor[In] {
			d := thunk()
			if err := d.Check(); err != nil {
				panic(err)
			}
			return d
		}),
	}
}

// Descriptor returns the operation's resolved descriptor.
func (o *Operation[In, Out]) Descriptor() Descriptor[In] {
	return o.descriptor()
}

// Route returns the operation's type-erased binding.
func (o *Operation[In, Out]) Route() Route {
	return o.descriptor().Route()
}

// Name returns the operation id.
func (o *Operation[In, Out]) Name() string {
	return o.descriptor().Name
}

// Call performs one request/response round trip. The error, when non-nil,
// is one of *model.ValidationError, *model.TransportError,
// *model.OperationError, *model.APIError or *model.DecodeError, or wraps
// model.ErrCredentialExpired.
func (o *Operation[In, Out]) Call(ctx context.Context, e *Engine, in In) (Out, error) {
	var out Out
	desc := o.descriptor()

	if verr := validateStruct(in); verr != nil {
		e.recorder.RecordError(desc.Name, "validation")
		return out, toValidationError(desc.Name, reflect.TypeOf(in), verr)
	}

	cred, err := e.credential(ctx, desc.Name)
	if err != nil {
		e.recorder.RecordError(desc.Name, "credential")
		return out, err
	}

	ctx, span := observability.StartClientSpan(ctx, "operation."+desc.Name,
		observability.AttrOperation.String(desc.Name),
		observability.AttrOrganization.String(cred.Organization),
		observability.AttrHTTPMethod.String(desc.Method),
	)
	defer func() { observability.EndSpanWithError(span, err) }()

	built, err := BuildRequest(cred, desc, in)
	if err != nil {
		e.recorder.RecordError(desc.Name, errorKind(err))
		return out, err
	}
	built.Header.Set("User-Agent", e.userAgent)
	span.SetAttributes(observability.AttrRequestID.String(built.RequestID))
	observability.InjectTraceHeaders(ctx, built.Header)

	logger := observability.OperationLogger(ctx, e.logger, desc.Name, cred.Organization).With(
		zap.String("method", built.Method),
		zap.String("request_id", built.RequestID),
	)
	if ce := logger.Check(zap.DebugLevel, "sending request"); ce != nil {
		ce.Write(zap.String("url", built.URL), zap.Any("body", redactedBody(built.Body)))
	}

	start := time.Now()
	resp, sendErr := e.transport.Send(ctx, built.Request)
	duration := time.Since(start)
	if sendErr != nil {
		err = &model.TransportError{
			Operation: desc.Name,
			Method:    built.Method,
			URL:       built.URL,
			Err:       sendErr,
		}
		e.recorder.RecordError(desc.Name, "transport")
		logger.Error("request failed", zap.Duration("duration", duration), zap.Error(sendErr))
		return out, err
	}

	e.recorder.RecordRequest(desc.Name, resp.Status, duration)
	span.SetAttributes(observability.AttrHTTPStatus.Int(resp.Status))

	out, err = Resolve[Out](built, desc.Errors, resp)
	fields := []zap.Field{zap.Int("status", resp.Status), zap.Duration("duration", duration)}
	switch {
	case err == nil:
		logger.Debug("request completed", fields...)
	case resp.Status >= 500:
		e.recorder.RecordError(desc.Name, errorKind(err))
		logger.Error("request completed with server error", append(fields, zap.Error(err))...)
	default:
		e.recorder.RecordError(desc.Name, errorKind(err))
		logger.Warn("request completed with error", append(fields, zap.Error(err))...)
	}
	return out, err
}

// errorKind labels an error for metrics.
func errorKind(err error) string {
	var (
		valErr *model.ValidationError
		opErr  *model.OperationError
		apiErr *model.APIError
		decErr *model.DecodeError
		trErr  *model.TransportError
	)
	switch {
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &opErr):
		return "declared"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &decErr):
		return "decode"
	case errors.As(err, &trErr):
		return "transport"
	}
	return "other"
}

// redactedBody renders a JSON body for debug logging with secrets masked.
func redactedBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	fields, err := decodeObject(body)
	if err != nil {
		return "<non-object body>"
	}
	return observability.RedactBody(fields, nil)
}
