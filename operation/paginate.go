package operation

import (
	"context"
	"iter"

	"go.opentelemetry.io/otel/trace"

	"github.com/pitabwire/pscale/internal/observability"
	"github.com/pitabwire/pscale/model"
)

// Paginated is an operation whose output is a page envelope. It adds lazy
// page and item sequences built only on the base Call.
type Paginated[In any, T any, PIn interface {
	*In
	model.Pageable
}] struct {
	*Operation[In, model.Page[T]]
}

// MakePaginated builds a paginated operation from a descriptor thunk.
func MakePaginated[In any, T any, PIn interface {
	*In
	model.Pageable
}](thunk func() Descriptor[In]) *Paginated[In, T, PIn] {
	return &Paginated[In, T, PIn]{Operation: Make[In, model.Page[T]](thunk)}
}

// Pages returns a lazy sequence of pages starting at in. Each pull issues
// at most one request; the next request is only sent after the consumer
// asks for the next page. The sequence ends after the page whose
// next_page is null, or after yielding the first error.
//
// Each call to Pages starts over from in; in itself is never modified.
func (p *Paginated[In, T, PIn]) Pages(ctx context.Context, e *Engine, in In) iter.Seq2[model.Page[T], error] {
	return func(yield func(model.Page[T], error) bool) {
		var streamErr error
		ctx, span := observability.StartSpan(ctx, "pages."+p.Name(), observability.AttrOperation.String(p.Name()))
		defer func() { observability.EndSpanWithError(span, streamErr) }()

		fail := func(err error) {
			streamErr = err
			yield(model.Page[T]{}, err)
		}

		cur := in
		fetched := 0
		for {
			page, err := p.Call(ctx, e, cur)
			if err != nil {
				fail(err)
				return
			}
			fetched++
			e.recorder.RecordPage(p.Name())
			span.AddEvent("page", trace.WithAttributes(observability.AttrPage.Int(page.CurrentPage)))
			if !yield(page, nil) {
				return
			}
			if page.NextPage == nil {
				return
			}
			next := *page.NextPage
			if next <= page.CurrentPage {
				fail(&model.PaginationError{
					Operation: p.Name(),
					Page:      page.CurrentPage,
					Next:      next,
					Reason:    "next page does not advance",
				})
				return
			}
			if fetched >= e.maxPages {
				fail(&model.PaginationError{
					Operation: p.Name(),
					Page:      page.CurrentPage,
					Next:      next,
					Reason:    "page limit reached",
				})
				return
			}
			PIn(&cur).SetPage(next)
		}
	}
}

// Items flattens Pages into a lazy sequence of items, in page order and
// in-page order.
func (p *Paginated[In, T, PIn]) Items(ctx context.Context, e *Engine, in In) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page, err := range p.Pages(ctx, e, in) {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page.Data {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// Collect drains seq into a slice, stopping at the first error. Items
// gathered before the error are returned with it.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Take returns a sequence of at most n elements of seq. Errors count
// toward n; the source stops being pulled once n is reached.
func Take[T any](seq iter.Seq2[T, error], n int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if n <= 0 {
			return
		}
		count := 0
		for item, err := range seq {
			if !yield(item, err) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}
