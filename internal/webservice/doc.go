// Package webservice loads typed resources over HTTP.
//
// # Overview
//
// A Webservice performs one GET per load and hands the body to the
// resource's decoder. It is built once and passed to whoever needs it; there
// is no package-level shared instance.
//
// # Usage
//
//	ws, err := webservice.New(webservice.Options{Logger: logger})
//	if err != nil {
//		return err
//	}
//
//	// Blocking
//	episodes, err := webservice.Load(ctx, ws, episode.All(url, resource.FailFast))
//
//	// Completion callback, invoked exactly once on a worker goroutine
//	webservice.LoadAsync(ctx, ws, episode.All(url, resource.FailFast), func(res webservice.Result[[]episode.Episode]) {
//		program.Send(loadedMsg(res))
//	})
//
//	// Cancellable handle
//	call := webservice.Start(ctx, ws, episode.One(url))
//	defer call.Cancel()
//	ep, err := call.Wait(ctx)
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json
//   - Set User-Agent: episodes/0.1 unless overridden
//   - Carry a fresh X-Request-Id for log correlation
//   - Go through an otelhttp transport, so spans are emitted when a tracer
//     provider is installed
//
// # Error Handling
//
// Every failure is a *resource.Error:
//
//   - Invalid location, connection error, cancellation, non-2xx status:
//     KindTransport
//   - 2xx with a zero-length body: KindEmptyBody
//   - Malformed JSON: KindDeserialize
//   - Unexpected shape, or a decoder that panics: KindDecode
//
// Example error messages:
//   - "transport http://localhost:8000/episodes.json: execute request: dial tcp 127.0.0.1:8000: connect: connection refused"
//   - "transport http://localhost:8000/episodes.json: returned status 404"
//   - "decode http://localhost:8000/episodes.json: element 1: decode: missing field \"title\""
//
// # Caching
//
// When Options.Cache is set, Fetch consults it under cache.Key(location).
// A body is written back only by Load and friends, after the resource decoded
// it, and lives for Options.CacheTTL. A malformed 200 response therefore
// reaches the caller once and the next load asks the server again. Cache
// failures are logged and treated as misses.
//
// # Design Notes
//
//   - No retries and no deduplication of concurrent identical loads
//   - Result values are never partial: Value is the zero value whenever Err
//     is set
package webservice
