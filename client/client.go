// Package client is the typed catalog of platform API endpoints. Every
// endpoint is a descriptor handed to the operation engine; Client binds the
// catalog to one engine.
package client

import (
	"context"
	"iter"

	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// Client calls the platform API through an engine. It is safe for
// concurrent use.
type Client struct {
	engine *operation.Engine
}

// New creates a client sending through t and authenticating with creds.
func New(t model.Transport, creds model.CredentialProvider, opts ...operation.Option) *Client {
	return &Client{engine: operation.NewEngine(t, creds, opts...)}
}

// NewWithEngine creates a client around an existing engine.
func NewWithEngine(e *operation.Engine) *Client {
	return &Client{engine: e}
}

// Engine returns the engine the client calls through.
func (c *Client) Engine() *operation.Engine {
	return c.engine
}

func call[In, Out any](ctx context.Context, c *Client, op *operation.Operation[In, Out], in In) (Out, error) {
	return op.Call(ctx, c.engine, in)
}

func pages[In, T any, PIn interface {
	*In
	model.Pageable
}](ctx context.Context, c *Client, op *operation.Paginated[In, T, PIn], in In) iter.Seq2[model.Page[T], error] {
	return op.Pages(ctx, c.engine, in)
}

func items[In, T any, PIn interface {
	*In
	model.Pageable
}](ctx context.Context, c *Client, op *operation.Paginated[In, T, PIn], in In) iter.Seq2[T, error] {
	return op.Items(ctx, c.engine, in)
}
