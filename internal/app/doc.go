// Package app is the composition root for the episodes browser.
//
// # Overview
//
// Run wires configuration, logging, tracing, the optional response cache and
// the webservice, then hands the episode list resource to one of two
// consumers: a plain printer or the Bubble Tea browser in package ui.
//
// # Startup
//
//  1. Load an optional .env file, then ~/.config/episodes/config.toml
//  2. Apply command line overrides (URL, poll interval)
//  3. Build the zap logger (stderr in plain mode, --log-file otherwise)
//  4. Install the OTLP tracer provider when tracing.otlp_endpoint is set
//  5. Connect to Redis when cache.redis_addr is set; fall back to no cache
//  6. Construct one webservice.Webservice and inject it everywhere
//  7. Print and exit (--plain), or start the poller and the TUI
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()         TOML + EPISODES_* env
//	       ├─────> initCache()           Redis or nil
//	       ├─────> webservice.New()      shared Fetcher
//	       ├─────> episode.All()         Resource[[]Episode]
//	       ├─────> StartPoller()         optional background refresh
//	       └─────> ui.Run() / runPlain() blocks until done
//
// # Polling
//
// Run creates one state.Store. The TUI records its own loads there, and with
// poll_interval > 0 the poller reloads the list into the same store.
// Failures are logged and recorded in the store; the delay doubles per
// consecutive failure up to 30 seconds.
//
// # Error Handling
//
// Configuration, logger, tracer and webservice construction errors are
// returned from Run. A failed load in plain mode is returned with its
// resource.Kind intact, so callers can still use errors.Is against the
// resource sentinels. An unreachable Redis is logged and ignored.
package app
