package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/episodes/internal/episode"
	"github.com/five82/episodes/internal/resource"
	"github.com/five82/episodes/internal/state"
	"github.com/five82/episodes/internal/webservice"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that reloads the episode list
// into store. After consecutive failures the delay doubles up to maxBackoff.
// It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, f webservice.Fetcher, all resource.Resource[[]episode.Episode], interval time.Duration, logger *zap.SugaredLogger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	go func() {
		failures := 0
		for {
			if err := refresh(ctx, store, f, all); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				logger.Warnw("episode refresh failed", "url", all.Location(), "failures", failures, "error", err)
			} else {
				failures = 0
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, f webservice.Fetcher, all resource.Resource[[]episode.Episode]) error {
	episodes, err := webservice.Load(ctx, f, all)
	if err != nil {
		if ctx.Err() == nil {
			store.Update(nil, err)
		}
		return err
	}
	store.Update(episodes, nil)
	return nil
}

func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures >= 16 {
		return maxBackoff
	}
	d := base << failures
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}
