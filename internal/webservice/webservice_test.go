package webservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/five82/episodes/internal/cache"
	"github.com/five82/episodes/internal/episode"
	"github.com/five82/episodes/internal/resource"
)

func newTestService(t *testing.T, opts Options) *Webservice {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t).Sugar()
	}
	ws, err := New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return ws
}

func TestNew_RejectsNegativeDurations(t *testing.T) {
	if _, err := New(Options{Timeout: -time.Second}); err == nil {
		t.Fatalf("New returned nil error for negative timeout")
	}
	if _, err := New(Options{CacheTTL: -time.Second}); err == nil {
		t.Fatalf("New returned nil error for negative cache ttl")
	}
}

func TestLoad_DecodesEpisodesAndSetsHeaders(t *testing.T) {
	t.Parallel()

	var gotAccept, gotUserAgent, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		gotAccept = r.Header.Get("Accept")
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","title":"The Networking Library"},{"id":"2","title":"Loading View Controllers"}]`))
	}))
	t.Cleanup(server.Close)

	ws := newTestService(t, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	got, err := Load(ctx, ws, episode.All(server.URL+"/episodes.json", resource.FailFast))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []episode.Episode{
		{ID: "1", Title: "The Networking Library"},
		{ID: "2", Title: "Loading View Controllers"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Load mismatch (-want +got):\n%s", diff)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept = %q, want application/json", gotAccept)
	}
	if !strings.HasPrefix(gotUserAgent, "episodes/") {
		t.Fatalf("User-Agent = %q, want episodes/*", gotUserAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-Id header missing")
	}
}

func TestLoad_ClassifiesFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/error":
			http.Error(w, "nope", http.StatusInternalServerError)
		case "/missing":
			http.NotFound(w, r)
		case "/empty":
			w.WriteHeader(http.StatusOK)
		case "/nocontent":
			w.WriteHeader(http.StatusNoContent)
		case "/malformed":
			_, _ = w.Write([]byte("{not-json"))
		case "/shape":
			_, _ = w.Write([]byte(`{"id":"1"}`))
		default:
			_, _ = w.Write([]byte(`{"id":"1","title":"ok"}`))
		}
	}))
	t.Cleanup(server.Close)

	ws := newTestService(t, Options{})
	cases := []struct {
		path string
		want error
		kind resource.Kind
	}{
		{"/error", resource.ErrTransport, resource.KindTransport},
		{"/missing", resource.ErrTransport, resource.KindTransport},
		{"/empty", resource.ErrEmptyBody, resource.KindEmptyBody},
		{"/nocontent", resource.ErrEmptyBody, resource.KindEmptyBody},
		{"/malformed", resource.ErrDeserialize, resource.KindDeserialize},
		{"/shape", resource.ErrDecode, resource.KindDecode},
	}
	for _, tc := range cases {
		t.Run(strings.TrimPrefix(tc.path, "/"), func(t *testing.T) {
			got, err := Load(context.Background(), ws, episode.One(server.URL+tc.path))
			if !errors.Is(err, tc.want) {
				t.Fatalf("Load error = %v, want %v", err, tc.want)
			}
			if resource.KindOf(err) != tc.kind {
				t.Fatalf("KindOf = %v, want %v", resource.KindOf(err), tc.kind)
			}
			if got != (episode.Episode{}) {
				t.Fatalf("Load returned partial value %#v", got)
			}
		})
	}

	if _, err := Load(context.Background(), ws, episode.One(server.URL+"/ok")); err != nil {
		t.Fatalf("Load(/ok) returned error: %v", err)
	}
}

func TestLoad_ErrorStatusMentionsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := Load(context.Background(), newTestService(t, Options{}), episode.One(server.URL))
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("Load error = %v, want status 500 error", err)
	}
}

func TestFetch_RejectsInvalidLocations(t *testing.T) {
	ws := newTestService(t, Options{})
	for _, loc := range []string{"", "   ", "ftp://example.com/x", "/relative/path", "http://", "::bad"} {
		_, err := ws.Fetch(context.Background(), loc)
		if !errors.Is(err, resource.ErrTransport) {
			t.Fatalf("Fetch(%q) error = %v, want ErrTransport", loc, err)
		}
	}
}

func TestLoadAsync_UnreachableCompletesOnceWithTransportFailure(t *testing.T) {
	ws := newTestService(t, Options{Timeout: time.Second})

	results := make(chan Result[[]episode.Episode], 2)
	LoadAsync(context.Background(), ws, episode.All("http://127.0.0.1:1/episodes.json", resource.FailFast), func(res Result[[]episode.Episode]) {
		results <- res
	})

	select {
	case res := <-results:
		if res.OK() {
			t.Fatalf("LoadAsync succeeded against an unreachable host: %#v", res.Value)
		}
		if !errors.Is(res.Err, resource.ErrTransport) {
			t.Fatalf("LoadAsync error = %v, want ErrTransport", res.Err)
		}
		if res.Value != nil {
			t.Fatalf("LoadAsync value = %#v, want nil", res.Value)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("LoadAsync did not complete within timeout")
	}

	select {
	case res := <-results:
		t.Fatalf("completion invoked twice; second result %#v", res)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLoadAsync_FailingDecoderCompletesOnce(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","title":"ok"}`))
	}))
	t.Cleanup(server.Close)

	ws := newTestService(t, Options{})
	failing := resource.New(server.URL, func([]byte) (int, error) {
		return 0, errors.New("never decodes")
	})

	var calls atomic.Int32
	done := make(chan Result[int], 2)
	LoadAsync(context.Background(), ws, failing, func(res Result[int]) {
		calls.Add(1)
		done <- res
	})

	select {
	case res := <-done:
		if !errors.Is(res.Err, resource.ErrDecode) {
			t.Fatalf("error = %v, want ErrDecode", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("completion not invoked")
	}
	time.Sleep(50 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("completion invoked %d times, want 1", n)
	}
}

func TestLoadAsync_PanickingDecoderIsDecodeFailure(t *testing.T) {
	fake := FetcherFunc(func(context.Context, string) ([]byte, error) {
		return []byte("x"), nil
	})
	panicky := resource.New("fake://x", func([]byte) (string, error) {
		panic("boom")
	})

	done := make(chan Result[string], 1)
	LoadAsync(context.Background(), fake, panicky, func(res Result[string]) { done <- res })

	select {
	case res := <-done:
		if !errors.Is(res.Err, resource.ErrDecode) || !strings.Contains(res.Err.Error(), "boom") {
			t.Fatalf("error = %v, want decode failure mentioning boom", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("completion not invoked")
	}
}

func TestLoad_FakeFetcher(t *testing.T) {
	var gotLocation string
	fake := FetcherFunc(func(_ context.Context, location string) ([]byte, error) {
		gotLocation = location
		return []byte(`{"id":"7","title":"Fake"}`), nil
	})
	got, err := Load(context.Background(), fake, episode.One("mem://episode/7"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != (episode.Episode{ID: "7", Title: "Fake"}) {
		t.Fatalf("Load = %#v", got)
	}
	if gotLocation != "mem://episode/7" {
		t.Fatalf("location = %q", gotLocation)
	}

	empty := FetcherFunc(func(context.Context, string) ([]byte, error) { return nil, nil })
	if _, err := Load(context.Background(), empty, episode.One("mem://x")); !errors.Is(err, resource.ErrEmptyBody) {
		t.Fatalf("Load error = %v, want ErrEmptyBody", err)
	}

	broken := FetcherFunc(func(context.Context, string) ([]byte, error) { return nil, fmt.Errorf("offline") })
	if _, err := Load(context.Background(), broken, episode.One("mem://x")); !errors.Is(err, resource.ErrTransport) {
		t.Fatalf("Load error = %v, want untagged fetch errors tagged as ErrTransport", err)
	}

	if _, err := Load[episode.Episode](context.Background(), nil, episode.One("mem://x")); !errors.Is(err, resource.ErrTransport) {
		t.Fatalf("Load with nil fetcher error = %v, want ErrTransport", err)
	}
}

func TestStart_CancelAbortsInFlightRequest(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	ws := newTestService(t, Options{Timeout: 10 * time.Second})
	call := Start(context.Background(), ws, episode.One(server.URL))

	select {
	case <-call.Done():
		t.Fatalf("call finished before cancel")
	case <-time.After(50 * time.Millisecond):
	}
	call.Cancel()

	res := call.Result()
	if !errors.Is(res.Err, resource.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", res.Err)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("error = %v, want it to wrap context.Canceled", res.Err)
	}
	call.Cancel()
}

func TestCall_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	fake := FetcherFunc(func(ctx context.Context, _ string) ([]byte, error) {
		select {
		case <-block:
			return []byte(`1`), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	call := Start(context.Background(), fake, resource.NewJSON("mem://n", func(v any) (float64, error) {
		n, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("not a number")
		}
		return n, nil
	}))
	t.Cleanup(call.Cancel)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := call.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait error = %v, want deadline exceeded", err)
	}
}

func TestStart_ReturnsValue(t *testing.T) {
	fake := FetcherFunc(func(context.Context, string) ([]byte, error) {
		return []byte(`[{"id":"1","title":"a"}]`), nil
	})
	call := Start(context.Background(), fake, episode.All("mem://all", resource.FailFast))
	got, err := call.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("Wait = %#v", got)
	}
}

func TestLoad_SharedResourceAcrossConcurrentLoads(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1","title":"a"},{"id":"2","title":"b"}]`))
	}))
	t.Cleanup(server.Close)

	ws := newTestService(t, Options{})
	all := episode.All(server.URL, resource.FailFast)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Load(context.Background(), ws, all)
			if err == nil && len(got) != 2 {
				err = fmt.Errorf("got %d episodes, want 2", len(got))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Load: %v", err)
		}
	}
}

func TestFetch_UsesCacheForSuccessfulBodies(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/empty" {
			return
		}
		_, _ = w.Write([]byte(`{"id":"1","title":"cached"}`))
	}))
	t.Cleanup(server.Close)

	mem := cache.NewMemoryCache()
	ws := newTestService(t, Options{Cache: mem, CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		got, err := Load(context.Background(), ws, episode.One(server.URL+"/one"))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if got.Title != "cached" {
			t.Fatalf("Load = %#v", got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server hits = %d, want 1", n)
	}

	for i := 0; i < 2; i++ {
		if _, err := Load(context.Background(), ws, episode.One(server.URL+"/empty")); !errors.Is(err, resource.ErrEmptyBody) {
			t.Fatalf("Load error = %v, want ErrEmptyBody", err)
		}
	}
	if n := hits.Load(); n != 3 {
		t.Fatalf("server hits = %d, want 3 (empty bodies are not cached)", n)
	}
}

func TestLoad_DoesNotCacheUndecodableBodies(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"1","title":"Pilot"}`))
	}))
	t.Cleanup(server.Close)

	mem := cache.NewMemoryCache()
	ws := newTestService(t, Options{Cache: mem, CacheTTL: time.Minute})
	one := episode.One(server.URL + "/one")

	if _, err := Load(context.Background(), ws, one); !errors.Is(err, resource.ErrDeserialize) {
		t.Fatalf("first Load error = %v, want ErrDeserialize", err)
	}
	if _, err := mem.Get(context.Background(), cache.Key(one.Location())); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("cache after malformed body error = %v, want ErrCacheMiss", err)
	}

	got, err := Load(context.Background(), ws, one)
	if err != nil {
		t.Fatalf("second Load returned error: %v", err)
	}
	if got.Title != "Pilot" {
		t.Fatalf("second Load = %#v", got)
	}

	if _, err := Load(context.Background(), ws, one); err != nil {
		t.Fatalf("third Load returned error: %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Fatalf("server hits = %d, want 2 (only the decoded body is cached)", n)
	}
}

func TestFetch_ReadsButDoesNotWriteCache(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","title":"fresh"}`))
	}))
	t.Cleanup(server.Close)

	mem := cache.NewMemoryCache()
	ws := newTestService(t, Options{Cache: mem})
	location := server.URL + "/one"

	if _, err := ws.Fetch(context.Background(), location); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if _, err := mem.Get(context.Background(), cache.Key(location)); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("cache after raw Fetch error = %v, want ErrCacheMiss", err)
	}

	if err := mem.Set(context.Background(), cache.Key(location), []byte(`{"id":"1","title":"stale"}`), time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	body, err := ws.Fetch(context.Background(), location)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !strings.Contains(string(body), "stale") {
		t.Fatalf("Fetch body = %s, want cached body", body)
	}
}
