// Package encode runs one input-to-output VP9 conversion: probe the input's
// duration, build the encoder invocation, spawn it with its -progress stream
// on a pipe, feed parsed timestamps to a progress reporter, and map the
// child's exit status to a result. No retries; a failed job stays failed.
package encode

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/chonga/internal/config"
	"github.com/backmassage/chonga/internal/display"
	"github.com/backmassage/chonga/internal/logging"
	"github.com/backmassage/chonga/internal/probe"
	"github.com/backmassage/chonga/internal/sysinfo"
)

// Job is one conversion request. Created per file, immutable, discarded
// when the job completes.
type Job struct {
	InputPath  string
	OutputPath string
	Bitrate    string // Empty selects CRF mode with the configured CRF.
}

// ProgressReporter receives progress events for one encoder pass. Begin is
// called once the child process is running, Update on every parsed
// timestamp, and Done only when the pass succeeds.
type ProgressReporter interface {
	Begin(total time.Duration)
	Update(current time.Duration)
	Done()
}

type nopReporter struct{}

func (nopReporter) Begin(time.Duration)  {}
func (nopReporter) Update(time.Duration) {}
func (nopReporter) Done()                {}

// stderrTailLines bounds how much encoder diagnostic output an ExitError
// carries; matches what fits on a screen when the failure is logged.
const stderrTailLines = 20

// Convert runs one job to completion. On failure a partially written
// output file may remain at job.OutputPath; it is reported, not removed.
func Convert(ctx context.Context, cfg *config.Config, log *logging.Logger, job Job, rep ProgressReporter) error {
	if rep == nil {
		rep = nopReporter{}
	}

	if _, err := os.Stat(job.InputPath); err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, job.InputPath)
	}

	bitrate, err := config.ValidateBitrate(job.Bitrate)
	if err != nil {
		return err
	}

	pr, err := probe.Probe(ctx, job.InputPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrProbeFailed, job.InputPath, err)
	}
	total := time.Duration(pr.Duration() * float64(time.Second))

	cols, rows := cfg.TileColumns, cfg.TileRows
	if cols < 0 || rows < 0 {
		w, h := pr.Dimensions()
		autoCols, autoRows := ChooseTiling(w, h)
		if cols < 0 {
			cols = autoCols
		}
		if rows < 0 {
			rows = autoRows
		}
	}

	logAdvisories(log, job, bitrate, pr)

	params := BuildParams{
		Input:       job.InputPath,
		Output:      job.OutputPath,
		Bitrate:     bitrate,
		CRF:         cfg.CRF,
		Speed:       cfg.Speed,
		Deadline:    string(cfg.Deadline),
		Threads:     sysinfo.ThreadCount(cfg.Threads),
		TileColumns: cols,
		TileRows:    rows,
		AQMode:      cfg.AQMode,
		HWDecode:    cfg.HWDecode,
	}

	st := &State{Total: total}

	if cfg.TwoPass && bitrate != "" {
		return runTwoPass(ctx, cfg, log, params, st, rep)
	}
	return runPass(ctx, cfg, log, params, st, rep)
}

// runTwoPass runs the analysis pass to a null sink, then the real encode,
// and removes the pass log files afterwards regardless of outcome.
func runTwoPass(ctx context.Context, cfg *config.Config, log *logging.Logger, params BuildParams, st *State, rep ProgressReporter) error {
	passLog := strings.TrimSuffix(params.Output, filepath.Ext(params.Output)) + ".passlog"
	params.PassLog = passLog
	defer removePassLogs(passLog)

	log.Info("Pass 1/2 (analysis)")
	params.Pass, params.NullOutput = 1, true
	if err := runPass(ctx, cfg, log, params, st, rep); err != nil {
		return err
	}

	log.Info("Pass 2/2 (encode)")
	params.Pass, params.NullOutput = 2, false
	st.Current = 0
	return runPass(ctx, cfg, log, params, st, rep)
}

// runPass executes one encoder invocation, streaming its progress pipe
// until EOF and then waiting for the exit status.
func runPass(ctx context.Context, cfg *config.Config, log *logging.Logger, params BuildParams, st *State, rep ProgressReporter) error {
	args := BuildArgs(params)
	log.Debug(cfg.Verbose, "Running: %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	st.Start = time.Now()
	rep.Begin(st.Total)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if IsEndMarker(line) {
			break
		}
		if d, ok := ParseProgressLine(line); ok {
			st.Update(d)
			rep.Update(st.Current)
		}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{
				Code:       exitErr.ExitCode(),
				StderrTail: Tail(stderrBuf.String(), stderrTailLines),
			}
		}
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	rep.Done()
	return nil
}

// logAdvisories warns when a bitrate-mode encode is projected to exceed the
// source size or the destination's free disk space. Advisory only; the
// encode proceeds either way.
func logAdvisories(log *logging.Logger, job Job, bitrate string, pr *probe.Result) {
	if bitrate == "" {
		return
	}
	bps := config.ParseBitrateBPS(bitrate)
	if bps <= 0 || pr.Duration() <= 0 {
		return
	}

	estBytes := int64(float64(bps) / 8 * pr.Duration())

	if src, err := os.Stat(job.InputPath); err == nil && src.Size() > 0 {
		if estBytes > src.Size()*105/100 {
			log.Note("Target bitrate %s implies ~%s output; may exceed source (%s)",
				display.FormatBitrateLabel(bps),
				display.FormatBytes(estBytes), display.FormatBytes(src.Size()))
		}
	}

	if free := sysinfo.FreeBytesAt(job.OutputPath); free > 0 && uint64(estBytes) > free {
		log.Note("Projected output ~%s exceeds free space at destination (%s)",
			display.FormatBytes(estBytes), display.FormatBytes(int64(free)))
	}
}

// removePassLogs deletes the bookkeeping files libvpx leaves behind after a
// two-pass encode.
func removePassLogs(passLog string) {
	for _, suffix := range []string{"", ".log", "-0.log"} {
		_ = os.Remove(passLog + suffix)
	}
}

// Tail returns the last n lines of s, for surfacing encoder diagnostics
// in error output.
func Tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
