package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/episodes/internal/episode"
	"github.com/five82/episodes/internal/state"
	"github.com/five82/episodes/internal/webservice"
)

type (
	// episodesLoadedMsg reports that a UI-started load finished. The result
	// itself is already recorded in the store.
	episodesLoadedMsg webservice.Result[[]episode.Episode]
	snapshotMsg       state.Snapshot
	tickMsg           time.Time
	reloadStartedMsg  struct{}
)

// Model is the Bubble Tea model for the episode browser.
type Model struct {
	keys   keyMap
	help   help.Model
	theme  Theme
	styles Styles

	spinner spinner.Model
	loading bool
	reload  func()

	store    *state.Store
	revision uint64
	pollTick time.Duration

	episodes   []episode.Episode
	err        error
	loadedAt   time.Time
	cursor     int
	selectedID string
	showDetail bool

	width  int
	height int
}

// New creates a browser model. reload must start an asynchronous load that
// records its result in opts.Store and then delivers an episodesLoadedMsg to
// the program. A nil opts.Store gets a private one.
func New(opts Options, reload func()) Model {
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	theme := GetTheme(opts.ThemeName)
	styles := theme.Styles()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.AccentText),
	)

	return Model{
		keys:       DefaultKeyMap(),
		help:       help.New(),
		theme:      theme,
		styles:     styles,
		spinner:    sp,
		loading:    true,
		reload:     reload,
		store:      store,
		pollTick:   opts.PollTick,
		selectedID: opts.Prefs.LastEpisode,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.startReload()}
	if m.pollTick > 0 {
		cmds = append(cmds, tickCmd(m.pollTick))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reloadStartedMsg:
		return m, nil

	case episodesLoadedMsg:
		m.loading = false
		if snap, ok := m.store.Since(m.revision); ok {
			m.applySnapshot(snap)
		}
		return m, nil

	case snapshotMsg:
		snap := state.Snapshot(msg)
		if snap.Revision > m.revision {
			m.applySnapshot(snap)
		}
		return m, nil

	case tickMsg:
		if m.pollTick <= 0 {
			return m, nil
		}
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.pollTick))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.styles = m.theme.Styles()
		m.spinner.Style = m.styles.AccentText
	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.startReload())
	case key.Matches(msg, m.keys.Escape):
		m.showDetail = false
	case key.Matches(msg, m.keys.Detail):
		if len(m.episodes) > 0 {
			m.showDetail = !m.showDetail
		}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.episodes) - 1)
	}
	return m, nil
}

func (m Model) startReload() tea.Cmd {
	reload := m.reload
	return func() tea.Msg {
		if reload != nil {
			reload()
		}
		return reloadStartedMsg{}
	}
}

// applySnapshot renders the store's view of the list. A failed load keeps
// the previous episodes and shows the error.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.revision = snap.Revision
	m.err = snap.LastError
	if snap.HasData {
		m.loadedAt = snap.LastSuccess
		m.setEpisodes(snap.Episodes)
	}
}

// setEpisodes replaces the list and keeps the cursor on the previously
// selected episode when it is still present.
func (m *Model) setEpisodes(episodes []episode.Episode) {
	m.episodes = episodes
	for i, ep := range episodes {
		if ep.ID == m.selectedID && m.selectedID != "" {
			m.cursor = i
			return
		}
	}
	m.moveCursor(m.cursor)
}

func (m *Model) moveCursor(idx int) {
	if len(m.episodes) == 0 {
		m.cursor = 0
		m.selectedID = ""
		m.showDetail = false
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.episodes) {
		idx = len(m.episodes) - 1
	}
	m.cursor = idx
	m.selectedID = m.episodes[idx].ID
}

// SelectedID returns the id of the highlighted episode, if any.
func (m Model) SelectedID() string {
	return m.selectedID
}

// ThemeName returns the active theme.
func (m Model) ThemeName() string {
	return m.theme.Name
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("Episodes"))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	if m.showDetail && len(m.episodes) > 0 {
		b.WriteString(m.renderDetail())
	} else {
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderStatus() string {
	switch {
	case m.loading:
		return m.spinner.View() + " " + m.styles.MutedText.Render("Loading episodes...")
	case m.err != nil:
		return m.styles.DangerText.Render("Load failed: ") + m.styles.Text.Render(truncate(oneLine(m.err.Error()), m.lineWidth()-13))
	case m.loadedAt.IsZero():
		return m.styles.MutedText.Render("No data yet")
	default:
		return m.styles.SuccessText.Render(fmt.Sprintf("%d episodes", len(m.episodes))) +
			m.styles.MutedText.Render("  updated "+m.loadedAt.Format("15:04:05"))
	}
}

func (m Model) renderList() string {
	if len(m.episodes) == 0 {
		if m.loading {
			return ""
		}
		return m.styles.MutedText.Render("No episodes.") + "\n"
	}

	start, end := m.visibleRange()
	width := m.lineWidth()
	var b strings.Builder
	for i := start; i < end; i++ {
		ep := m.episodes[i]
		row := truncate(oneLine(ep.Title), width-2)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + row))
		} else {
			b.WriteString("  " + m.styles.Text.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	ep := m.episodes[m.cursor]
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.MutedText.Render("ID")+"     "+m.styles.Text.Render(ep.ID),
		m.styles.MutedText.Render("Title")+"  "+m.styles.AccentText.Render(ep.Title),
	)
	return m.styles.Detail.Render(body) + "\n"
}

// visibleRange keeps the cursor on screen when the list is taller than the
// terminal.
func (m Model) visibleRange() (int, int) {
	rows := m.height - 6
	if m.height <= 0 || rows >= len(m.episodes) {
		return 0, len(m.episodes)
	}
	if rows < 1 {
		rows = 1
	}
	start := m.cursor - rows/2
	if start < 0 {
		start = 0
	}
	end := start + rows
	if end > len(m.episodes) {
		end = len(m.episodes)
		start = end - rows
	}
	return start, end
}

func (m Model) lineWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}
