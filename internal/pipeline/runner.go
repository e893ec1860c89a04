// Package pipeline orchestrates input expansion, per-file conversion, and
// batch summary reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/chonga/internal/config"
	"github.com/backmassage/chonga/internal/display"
	"github.com/backmassage/chonga/internal/encode"
	"github.com/backmassage/chonga/internal/logging"
)

const minFileSize = 1000

// Run is the batch entry point. It expands the input arguments, converts
// each file sequentially, and returns aggregate stats. One file failing
// never stops the files after it; only context cancellation does.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	var stats RunStats

	files, err := Expand(cfg.Inputs)
	if err != nil {
		log.Error("Input expansion failed: %v", err)
		return stats
	}

	stats.Total = len(files)
	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		processFile(ctx, cfg, log, path, &stats)
	}

	logSummary(log, &stats)
	return stats
}

// ConvertOne runs the single-file mode: one input, one explicit output.
// Errors are logged and returned so the caller can set the exit code.
func ConvertOne(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	job := encode.Job{
		InputPath:  cfg.InputPath,
		OutputPath: cfg.OutputPath,
		Bitrate:    cfg.Bitrate,
	}

	log.Info("Converting: %s", filepath.Base(job.InputPath))
	log.Info("  -> %s", filepath.Base(job.OutputPath))

	start := time.Now()
	if err := encode.Convert(ctx, cfg, log, job, newReporter(job.InputPath)); err != nil {
		logConvertError(log, err)
		return err
	}

	logResult(log, job, time.Since(start), nil)
	return nil
}

// processFile handles one batch entry: validate, derive the output path,
// convert, update stats.
func processFile(ctx context.Context, cfg *config.Config, log *logging.Logger, path string, stats *RunStats) {
	basename := filepath.Base(path)
	log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)

	fi, err := os.Stat(path)
	if err != nil {
		log.Error("File not found: %s", path)
		stats.Failed++
		fmt.Println()
		return
	}
	if fi.Size() < minFileSize {
		log.Error("File too small (possibly corrupt): %s", path)
		stats.Failed++
		fmt.Println()
		return
	}

	job := encode.Job{
		InputPath:  path,
		OutputPath: OutputPath(path),
		Bitrate:    cfg.Bitrate,
	}

	if _, err := os.Stat(job.OutputPath); err == nil {
		log.Warn("Skip (exists): %s", filepath.Base(job.OutputPath))
		stats.Skipped++
		fmt.Println()
		return
	}

	log.Info("  -> %s", filepath.Base(job.OutputPath))

	start := time.Now()
	if err := encode.Convert(ctx, cfg, log, job, newReporter(path)); err != nil {
		logConvertError(log, err)
		stats.Failed++
		fmt.Println()
		return
	}

	elapsed := time.Since(start)
	logResult(log, job, elapsed, stats)
	fmt.Println()
}

func newReporter(input string) *display.BarReporter {
	return &display.BarReporter{
		Description: filepath.Base(input),
		Quiet:       !logging.IsTerminal(os.Stderr),
	}
}

// logConvertError reports a conversion failure, including the encoder's
// stderr tail when the child exited nonzero.
func logConvertError(log *logging.Logger, err error) {
	var exitErr *encode.ExitError
	if errors.As(err, &exitErr) {
		log.Error("Encoder failed (exit %d)", exitErr.Code)
		if exitErr.StderrTail != "" {
			log.Error("Last encoder output:")
			for _, l := range strings.Split(exitErr.StderrTail, "\n") {
				log.Error("  %s", l)
			}
		}
		return
	}
	log.Error("Conversion failed: %v", err)
}

// logResult reports a successful conversion and, when stats is non-nil,
// folds the byte totals into the batch counters.
func logResult(log *logging.Logger, job encode.Job, elapsed time.Duration, stats *RunStats) {
	var inSize, outSize int64
	if info, err := os.Stat(job.InputPath); err == nil {
		inSize = info.Size()
	}
	if info, err := os.Stat(job.OutputPath); err == nil {
		outSize = info.Size()
	}

	ratio := int64(100)
	if inSize > 0 {
		ratio = outSize * 100 / inSize
	}

	if stats != nil {
		stats.TotalInputBytes += inSize
		stats.TotalOutputBytes += outSize
		stats.Converted++
	}

	log.Success("Converted in %ds (%d%% of original)", int(elapsed.Seconds()), ratio)
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d files", stats.Total)

	if cfg.Bitrate != "" {
		label := "Mode: bitrate %s (VP9)"
		if cfg.TwoPass {
			label = "Mode: two-pass bitrate %s (VP9)"
		}
		log.Info(label, cfg.Bitrate)
	} else {
		log.Info("Mode: constant quality CRF %d (VP9)", cfg.CRF)
	}
	log.Info("Speed: %d, deadline: %s", cfg.Speed, cfg.Deadline)
	log.Info("Audio: stripped")
	fmt.Println()
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d converted, %d skipped, %d failed", stats.Converted, stats.Skipped, stats.Failed)
	log.Info("Summary report:")
	log.Info("  Total files processed: %d", stats.Current)

	saved := stats.SpaceSaved()
	if saved >= 0 {
		log.Success("  Total space saved: %s (input %s -> output %s)",
			display.FormatBytes(saved),
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	} else {
		log.Warn("  Total space saved: -%s (overall output is larger)",
			display.FormatBytes(-saved))
	}
}
