// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for ffmpeg, ffprobe, and libvpx-vp9.
package check

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrVP9EncodeFailed = errors.New("libvpx-vp9 test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of ffmpeg,
// ffprobe, the VP9 encoder, and hardware decode support.
// This is informational only, it does not stop on failure.
func RunCheck(log Logger) {
	log.Info("=== System Check ===")

	checkTool(log, "ffmpeg")
	checkTool(log, "ffprobe")
	checkVP9Encoders(log)
	checkVP9Encode(log)
	checkHWDecode(log)
}

// checkTool verifies a binary is on PATH and logs its version string.
func checkTool(log Logger, name string) {
	if _, err := exec.LookPath(name); err != nil {
		log.Error("%s not found", name)
		return
	}
	cmd := exec.Command(name, "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
}

// checkVP9Encoders lists all VP9-related encoders reported by ffmpeg.
func checkVP9Encoders(log Logger) {
	log.Info("VP9 encoders:")
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(strings.ToLower(line), "vp9") {
			log.Info("  %s", strings.TrimSpace(line))
		}
	}
}

// checkVP9Encode runs a minimal libvpx-vp9 encode to verify the encoder works.
func checkVP9Encode(log Logger) {
	log.Info("Testing libvpx-vp9...")
	if runSilent("ffmpeg", vp9TestArgs()...) {
		log.Success("libvpx-vp9 works")
	} else {
		log.Error("libvpx-vp9 test encode failed")
	}
}

// checkHWDecode reports whether hardware-accelerated decode is available.
// Only VideoToolbox on macOS is probed; everywhere else decode is software.
func checkHWDecode(log Logger) {
	if runtime.GOOS != "darwin" {
		log.Info("Hardware decode: not used on %s", runtime.GOOS)
		return
	}
	cmd := exec.Command("ffmpeg", "-hide_banner", "-hwaccels")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("Could not list hwaccels: %v", err)
		return
	}
	if strings.Contains(string(out), "videotoolbox") {
		log.Success("VideoToolbox decode available")
	} else {
		log.Warn("VideoToolbox not reported by ffmpeg")
	}
}

// CheckDeps is the pre-run validation: it verifies that ffmpeg and ffprobe
// are on PATH and that a quick libvpx-vp9 encode succeeds. Returns a
// sentinel error on failure.
func CheckDeps() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	if !runSilent("ffmpeg", vp9TestArgs()...) {
		return ErrVP9EncodeFailed
	}
	return nil
}

// vp9TestArgs returns the ffmpeg arguments for a minimal libvpx-vp9 test
// encode. Shared by checkVP9Encode and CheckDeps to avoid duplicating the
// argument list.
func vp9TestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", "libvpx-vp9",
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
