package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/episodes/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/episodes/config.toml)")
	envFile := flag.String("env", ".env", "dotenv file with EPISODES_* overrides (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	url := flag.String("url", "", "episode list location (overrides episodes_url)")
	poll := flag.Duration("poll", 0, "background refresh interval (optional, 0 loads once)")
	plain := flag.Bool("plain", false, "print episodes and exit instead of starting the TUI")
	logFile := flag.String("log-file", "", "write logs to this file (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		EnvFile:    *envFile,
		PrefsPath:  *prefsPath,
		URL:        *url,
		Plain:      *plain,
		LogFile:    *logFile,
	}
	if *poll > 0 {
		opts.PollEvery = *poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "episodes: %v\n", err)
		return 1
	}
	return 0
}
