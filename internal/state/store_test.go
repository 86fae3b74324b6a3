package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/episodes/internal/episode"
	"github.com/five82/episodes/internal/resource"
	"github.com/five82/episodes/internal/webservice"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	episodes := []episode.Episode{{ID: "1", Title: "One"}, {ID: "2", Title: "Two"}}

	before := time.Now()
	s.Update(episodes, nil)

	snap := s.Snapshot()
	if !snap.HasData {
		t.Fatalf("HasData = false, want true")
	}
	if len(snap.Episodes) != 2 || snap.Episodes[0].ID != "1" {
		t.Fatalf("snapshot episodes = %#v, want 2 items", snap.Episodes)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Neither the caller's slice nor the returned snapshot alias the store.
	episodes[0].Title = "mutated"
	snap.Episodes[1].Title = "mutated"
	snap2 := s.Snapshot()
	if snap2.Episodes[0].Title != "One" || snap2.Episodes[1].Title != "Two" {
		t.Fatalf("Store should clone episodes; got %#v", snap2.Episodes)
	}
}

func TestStore_EmptyListIsData(t *testing.T) {
	var s Store
	s.Update([]episode.Episode{}, nil)
	snap := s.Snapshot()
	if !snap.HasData || len(snap.Episodes) != 0 {
		t.Fatalf("snapshot = %#v, want HasData with no episodes", snap)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update([]episode.Episode{{ID: "1", Title: "One"}}, nil)

	origErr := &resource.Error{Kind: resource.KindTransport, Err: errors.New("boom")}
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if !snap.HasData || len(snap.Episodes) != 1 || snap.Episodes[0].ID != "1" {
		t.Fatalf("episodes changed on error: got %#v", snap.Episodes)
	}
	if !errors.Is(snap.LastError, resource.ErrTransport) {
		t.Fatalf("LastError = %v, want transport failure preserved through the clone", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.Update(nil, errors.New("fail 1"))
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update([]episode.Episode{{ID: "1", Title: "a"}}, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_RevisionAndSince(t *testing.T) {
	var s Store

	if _, ok := s.Since(0); ok {
		t.Fatalf("Since(0) on empty store reported a change")
	}

	s.Update([]episode.Episode{{ID: "1", Title: "One"}}, nil)
	snap, ok := s.Since(0)
	if !ok || snap.Revision != 1 {
		t.Fatalf("Since(0) = (rev %d, %v), want (1, true)", snap.Revision, ok)
	}
	if _, ok := s.Since(snap.Revision); ok {
		t.Fatalf("Since(current) reported a change")
	}

	s.Update(nil, errors.New("down"))
	snap, ok = s.Since(1)
	if !ok || snap.Revision != 2 {
		t.Fatalf("Since(1) after failure = (rev %d, %v), want (2, true)", snap.Revision, ok)
	}
	if snap.LastSuccess.IsZero() || snap.LastUpdated.Before(snap.LastSuccess) {
		t.Fatalf("LastSuccess = %v, LastUpdated = %v", snap.LastSuccess, snap.LastUpdated)
	}
}

func TestStore_RecordLoadResult(t *testing.T) {
	var s Store

	s.Record(webservice.Result[[]episode.Episode]{Value: []episode.Episode{{ID: "1", Title: "Pilot"}}})
	s.Record(webservice.Result[[]episode.Episode]{Err: resource.Errorf(resource.KindDecode, "bad")})

	snap := s.Snapshot()
	if len(snap.Episodes) != 1 || snap.Episodes[0].Title != "Pilot" {
		t.Fatalf("episodes = %#v, want the successful load kept", snap.Episodes)
	}
	if !errors.Is(snap.LastError, resource.ErrDecode) || snap.ConsecutiveFailures != 1 {
		t.Fatalf("LastError = %v, failures = %d", snap.LastError, snap.ConsecutiveFailures)
	}
}
