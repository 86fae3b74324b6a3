package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/episodes/internal/episode"
	"github.com/five82/episodes/internal/webservice"
)

// Snapshot is the episode list as last seen by any loader.
type Snapshot struct {
	Episodes            []episode.Episode
	HasData             bool
	LastUpdated         time.Time // last attempt, successful or not
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int
	// Revision increases with every recorded load, so readers can tell
	// whether anything happened since their last look.
	Revision uint64
}

// IsOffline returns true when the feed has been unreachable for multiple loads.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store is the single owner of loaded episode state. The poller and the UI
// both record their load results here.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records one load. When err is non-nil the previous list is kept and
// the error is recorded for visibility.
func (s *Store) Update(episodes []episode.Episode, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot.Revision++
	s.snapshot.LastUpdated = now
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Episodes = cloneEpisodes(episodes)
	s.snapshot.HasData = true
	s.snapshot.LastSuccess = now
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Record is Update for a load result. It has the shape of a
// webservice.LoadAsync completion.
func (s *Store) Record(res webservice.Result[[]episode.Episode]) {
	s.Update(res.Value, res.Err)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Episodes = cloneEpisodes(s.snapshot.Episodes)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Since returns the snapshot and true when its revision is newer than rev.
func (s *Store) Since(rev uint64) (Snapshot, bool) {
	s.mu.RLock()
	current := s.snapshot.Revision
	s.mu.RUnlock()
	if current <= rev {
		return Snapshot{}, false
	}
	return s.Snapshot(), true
}

func cloneEpisodes(items []episode.Episode) []episode.Episode {
	if items == nil {
		return nil
	}
	dup := make([]episode.Episode, len(items))
	copy(dup, items)
	return dup
}
