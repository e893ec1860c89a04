// Command chonga is the CLI entrypoint for the Chonga WebM converter.
//
// It parses flags, validates configuration, and dispatches to one of four
// modes: system diagnostics (--check), the interactive wizard (--tui),
// sequential batch conversion (--batch), or a single INPUT OUTPUT run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/chonga/internal/check"
	"github.com/backmassage/chonga/internal/config"
	"github.com/backmassage/chonga/internal/display"
	"github.com/backmassage/chonga/internal/logging"
	"github.com/backmassage/chonga/internal/pipeline"
	"github.com/backmassage/chonga/internal/tui"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" (no make), these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "chonga: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "chonga: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chonga: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	if cfg.CheckOnly {
		display.PrintBanner()
		check.RunCheck(log)
		return 0
	}

	if cfg.TUIMode {
		if err := tui.Run(&cfg, log); err != nil {
			log.Error("%v", err)
			return 1
		}
		return 0
	}

	display.PrintBanner()
	log.Info("=== Chonga v%s (%s) ===", version, commit)
	log.Info("")

	// Fail fast if ffmpeg/ffprobe or the VP9 encoder are unavailable.
	if err := check.CheckDeps(); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Signal handling. Cancel the context on SIGINT/SIGTERM so
	// the running encode stops and batch mode exits between files.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, stopping…")
		cancel()
	}()

	// Phase 4: Convert.
	if cfg.BatchMode {
		stats := pipeline.Run(ctx, &cfg, log)
		if stats.Failed > 0 {
			return 1
		}
		return 0
	}

	if err := pipeline.ConvertOne(ctx, &cfg, log); err != nil {
		return 1
	}
	return 0
}
