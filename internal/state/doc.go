// Package state owns the most recent episode list. The background poller and
// the UI reload both record their results in one Store, and the UI renders
// from its snapshots.
//
// Store is safe for concurrent use and its zero value is ready. Update
// replaces the list on success; on failure it keeps the previous list and
// records the error and a consecutive-failure count. Every update bumps
// Snapshot.Revision, which Since uses to skip unchanged reads. Snapshot
// returns copies so readers can never mutate stored data.
package state
