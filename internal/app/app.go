package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/five82/episodes/internal/cache"
	"github.com/five82/episodes/internal/config"
	"github.com/five82/episodes/internal/episode"
	"github.com/five82/episodes/internal/prefs"
	"github.com/five82/episodes/internal/resource"
	"github.com/five82/episodes/internal/state"
	"github.com/five82/episodes/internal/ui"
	"github.com/five82/episodes/internal/webservice"
)

// Options configure the episodes application.
type Options struct {
	ConfigPath string
	EnvFile    string // empty skips dotenv loading
	PrefsPath  string // empty uses default ~/.config/episodes/prefs.toml
	URL        string // overrides episodes_url when set
	PollEvery  time.Duration
	Plain      bool   // print episodes and exit instead of starting the TUI
	LogFile    string // empty disables logging in TUI mode; plain mode defaults to stderr
	Stdout     io.Writer
}

// Run loads configuration, wires the webservice and runs either the plain
// printer or the TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if u := strings.TrimSpace(opts.URL); u != "" {
		cfg.EpisodesURL = u
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}

	logPath := opts.LogFile
	if logPath == "" && opts.Plain {
		logPath = "stderr"
	}
	logger, err := initLogger(cfg.LogLevel, logPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := initTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := shutdownTracing(shutdownCtx); shutdownErr != nil {
			logger.Warnw("tracer shutdown failed", "error", shutdownErr)
		}
	}()

	respCache := initCache(ctx, cfg.Cache, cfg.Tracing.Enabled(), logger)
	if respCache != nil {
		defer func() { _ = respCache.Close() }()
	}

	ws, err := newWebservice(cfg, respCache, logger)
	if err != nil {
		return fmt.Errorf("init webservice: %w", err)
	}

	all := episode.All(cfg.EpisodesURL, cfg.ListPolicy)
	logger.Infow("starting", "url", cfg.EpisodesURL, "list_policy", cfg.ListPolicy.String(), "plain", opts.Plain)

	if opts.Plain {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		return runPlain(ctx, ws, all, out)
	}

	store := &state.Store{}
	if cfg.PollInterval > 0 {
		StartPoller(ctx, store, ws, all, cfg.PollInterval, logger)
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	return ui.Run(ctx, ui.Options{
		Fetcher:   ws,
		Resource:  all,
		Store:     store,
		PollTick:  cfg.PollInterval,
		ThemeName: userPrefs.Theme,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
}

func newWebservice(cfg config.Config, respCache cache.Cache, logger *zap.SugaredLogger) (*webservice.Webservice, error) {
	opts := webservice.Options{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    logger,
	}
	if respCache != nil {
		opts.Cache = respCache
	}
	return webservice.New(opts)
}

func runPlain(ctx context.Context, f webservice.Fetcher, all resource.Resource[[]episode.Episode], out io.Writer) error {
	episodes, err := webservice.Load(ctx, f, all)
	if err != nil {
		return fmt.Errorf("load episodes: %w", err)
	}
	return printEpisodes(out, episodes)
}

func printEpisodes(out io.Writer, episodes []episode.Episode) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE")
	for _, ep := range episodes {
		fmt.Fprintf(tw, "%s\t%s\n", ep.ID, ep.Title)
	}
	return tw.Flush()
}
