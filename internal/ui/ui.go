// Package ui is a terminal browser for the episode list built on Bubble Tea.
//
// It is a consumer of the webservice package: it shows a spinner, starts the
// load with webservice.LoadAsync and, because the completion runs on the
// loader's goroutine, records the result in the shared state.Store and hands
// control back to the program loop with tea.Program.Send before touching any
// model state.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/episodes/internal/episode"
	"github.com/five82/episodes/internal/prefs"
	"github.com/five82/episodes/internal/resource"
	"github.com/five82/episodes/internal/state"
	"github.com/five82/episodes/internal/webservice"
)

// Options configures the browser.
type Options struct {
	Fetcher  webservice.Fetcher
	Resource resource.Resource[[]episode.Episode]

	// Store receives every load result and is the list the browser shows.
	// When PollTick > 0 it is re-read on that interval to pick up
	// background refreshes. Nil means a private store.
	Store    *state.Store
	PollTick time.Duration

	ThemeName string
	Prefs     prefs.Prefs
	PrefsPath string
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		opts.Store = &state.Store{}
	}
	store := opts.Store

	var program *tea.Program
	reload := func() {
		webservice.LoadAsync(ctx, opts.Fetcher, opts.Resource, func(res webservice.Result[[]episode.Episode]) {
			store.Record(res)
			program.Send(episodesLoadedMsg(res))
		})
	}

	model := New(opts, reload)
	program = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	final, err := program.Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("run ui: %w", err)
	}

	if m, ok := final.(Model); ok {
		p := opts.Prefs
		p.Theme = m.ThemeName()
		if id := m.SelectedID(); id != "" {
			p.LastEpisode = id
		}
		if saveErr := prefs.Save(opts.PrefsPath, p); saveErr != nil {
			return fmt.Errorf("save prefs: %w", saveErr)
		}
	}
	return nil
}
