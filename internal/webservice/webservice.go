package webservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/five82/episodes/internal/cache"
	"github.com/five82/episodes/internal/resource"
)

// Fetcher retrieves the raw body stored at a location.
// This interface is implemented by *Webservice and can be used for testing.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// Ensure Webservice implements Fetcher at compile time.
var _ Fetcher = (*Webservice)(nil)

// Webservice performs HTTP GETs for resources.
type Webservice struct {
	http      *http.Client
	userAgent string
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *zap.SugaredLogger
}

// Options configure a Webservice. The zero value is usable.
type Options struct {
	// HTTPClient overrides the default instrumented client. Timeout is
	// ignored when it is set.
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	// Cache, when non-nil, stores bodies that decoded successfully for
	// CacheTTL.
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *zap.SugaredLogger
}

const (
	defaultUserAgent = "episodes/0.1"
	defaultTimeout   = 5 * time.Second
	defaultCacheTTL  = time.Minute
	maxBodyBytes     = 32 << 20
)

// New builds a Webservice from opts.
func New(opts Options) (*Webservice, error) {
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", opts.Timeout)
	}
	if opts.CacheTTL < 0 {
		return nil, fmt.Errorf("cache ttl must not be negative: %s", opts.CacheTTL)
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Webservice{
		http:      client,
		userAgent: userAgent,
		cache:     opts.Cache,
		cacheTTL:  ttl,
		logger:    logger,
	}, nil
}

// Fetch issues one GET for location and returns the body. It never retries.
// Failures are *resource.Error values of KindTransport or KindEmptyBody.
// A configured cache is read but never written here: Load commits a body
// only once its resource decoded it.
func (w *Webservice) Fetch(ctx context.Context, location string) ([]byte, error) {
	body, _, err := w.fetchBody(ctx, location)
	return body, err
}

// fetchBody is Fetch that also reports whether the body came from the cache.
func (w *Webservice) fetchBody(ctx context.Context, location string) ([]byte, bool, error) {
	if w == nil {
		return nil, false, resource.Errorf(resource.KindTransport, "webservice is nil")
	}
	target, err := parseLocation(location)
	if err != nil {
		return nil, false, &resource.Error{Kind: resource.KindTransport, Location: location, Err: err}
	}

	if body, ok := w.cached(ctx, location); ok {
		return body, true, nil
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, false, transportError(location, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	started := time.Now()
	resp, err := w.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		w.logger.Debugw("fetch failed", "url", location, "request_id", requestID, "error", err)
		return nil, false, transportError(location, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.logger.Debugw("fetch returned error status", "url", location, "request_id", requestID, "status", resp.StatusCode)
		return nil, false, transportError(location, fmt.Errorf("returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, false, transportError(location, fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, false, transportError(location, fmt.Errorf("body exceeds %d bytes", maxBodyBytes))
	}

	w.logger.Debugw("fetched resource",
		"url", location,
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(started),
	)

	if len(body) == 0 {
		return nil, false, &resource.Error{Kind: resource.KindEmptyBody, Location: location, Err: fmt.Errorf("status %d with no content", resp.StatusCode)}
	}

	return body, false, nil
}

func (w *Webservice) cached(ctx context.Context, location string) ([]byte, bool) {
	if w.cache == nil {
		return nil, false
	}
	body, err := w.cache.Get(ctx, cache.Key(location))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			w.logger.Warnw("response cache read failed", "url", location, "error", err)
		}
		return nil, false
	}
	if len(body) == 0 {
		return nil, false
	}
	w.logger.Debugw("serving resource from cache", "url", location, "bytes", len(body))
	return body, true
}

// commit stores a body that decoded successfully.
func (w *Webservice) commit(ctx context.Context, location string, body []byte) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Set(ctx, cache.Key(location), body, w.cacheTTL); err != nil {
		w.logger.Warnw("response cache write failed", "url", location, "error", err)
	}
}

func transportError(location string, err error) error {
	return &resource.Error{Kind: resource.KindTransport, Location: location, Err: err}
}

func parseLocation(location string) (*url.URL, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return nil, fmt.Errorf("location is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", location, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("location %q has no host", location)
	}
	return u, nil
}
