package webservice

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/five82/episodes/internal/resource"
)

const tracerName = "github.com/five82/episodes/internal/webservice"

// Result is the terminal outcome of a load. Exactly one of Value and Err is
// meaningful: Value only when Err is nil.
type Result[A any] struct {
	Value A
	Err   error
}

// OK reports whether the load succeeded.
func (r Result[A]) OK() bool {
	return r.Err == nil
}

// Load fetches r from f and decodes the body.
func Load[A any](ctx context.Context, f Fetcher, r resource.Resource[A]) (A, error) {
	res := run(ctx, f, r)
	return res.Value, res.Err
}

// LoadAsync runs Load on a new goroutine and invokes completion exactly once
// with the outcome. completion runs on that goroutine, so callers that own
// single-threaded state must hand the result back to their own loop.
func LoadAsync[A any](ctx context.Context, f Fetcher, r resource.Resource[A], completion func(Result[A])) {
	go func() {
		res := run(ctx, f, r)
		if completion != nil {
			completion(res)
		}
	}()
}

// Call is a handle to an in-flight load started with Start.
type Call[A any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result[A]
}

// Start begins loading r and returns immediately.
func Start[A any](ctx context.Context, f Fetcher, r resource.Resource[A]) *Call[A] {
	ctx, cancel := context.WithCancel(ctx)
	c := &Call[A]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer cancel()
		c.result = run(ctx, f, r)
		close(c.done)
	}()
	return c
}

// Cancel aborts the load. It is safe to call more than once and after the
// load finished.
func (c *Call[A]) Cancel() {
	c.cancel()
}

// Done is closed once the result is available.
func (c *Call[A]) Done() <-chan struct{} {
	return c.done
}

// Result blocks until the load finishes and returns its outcome.
func (c *Call[A]) Result() Result[A] {
	<-c.done
	return c.result
}

// Wait blocks until the load finishes or ctx is done. Giving up on ctx does
// not cancel the load itself.
func (c *Call[A]) Wait(ctx context.Context) (A, error) {
	select {
	case <-c.done:
		return c.result.Value, c.result.Err
	case <-ctx.Done():
		var zero A
		return zero, ctx.Err()
	}
}

func run[A any](ctx context.Context, f Fetcher, r resource.Resource[A]) (res Result[A]) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "webservice.Load",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("resource.location", r.Location())),
	)
	defer func() {
		if res.Err != nil {
			span.SetAttributes(attribute.String("resource.error_kind", resource.KindOf(res.Err).String()))
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		span.End()
	}()

	if f == nil {
		res.Err = resource.Errorf(resource.KindTransport, "no fetcher")
		return res
	}
	body, cached, err := fetch(ctx, f, r.Location())
	if err != nil {
		res.Err = resource.Wrap(resource.KindTransport, r.Location(), err)
		return res
	}
	if len(body) == 0 {
		res.Err = &resource.Error{Kind: resource.KindEmptyBody, Location: r.Location(), Err: fmt.Errorf("no content")}
		return res
	}
	res.Value, res.Err = decode(r, body)
	if res.Err == nil && !cached {
		if c, ok := f.(cachingFetcher); ok {
			c.commit(ctx, r.Location(), body)
		}
	}
	return res
}

// cachingFetcher is implemented by fetchers that keep a response cache. The
// cache is only written after a body decoded, so a malformed response is
// never replayed.
type cachingFetcher interface {
	fetchBody(ctx context.Context, location string) ([]byte, bool, error)
	commit(ctx context.Context, location string, body []byte)
}

func fetch(ctx context.Context, f Fetcher, location string) (body []byte, cached bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			body, cached = nil, false
			err = resource.Errorf(resource.KindTransport, "fetch panicked: %v", p)
		}
	}()
	if c, ok := f.(cachingFetcher); ok {
		return c.fetchBody(ctx, location)
	}
	body, err = f.Fetch(ctx, location)
	return body, false, err
}

func decode[A any](r resource.Resource[A], body []byte) (out A, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero A
			out = zero
			err = &resource.Error{Kind: resource.KindDecode, Location: r.Location(), Err: fmt.Errorf("decoder panicked: %v", p)}
		}
	}()
	return r.Decode(body)
}
