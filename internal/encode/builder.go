package encode

import (
	"runtime"
	"strconv"
)

// BuildParams carries everything the argument builder needs, resolved from
// config, probe results, and the pass being run. Keeping it a plain value
// makes the builder testable without ffprobe or an encoder on PATH.
type BuildParams struct {
	Input  string
	Output string

	// Bitrate is the -b:v token; empty selects CRF mode (-crf N -b:v 0).
	Bitrate string
	CRF     int

	Speed       int
	Deadline    string
	Threads     int
	TileColumns int
	TileRows    int
	AQMode      int
	HWDecode    bool

	// Pass is 0 for single-pass, 1 or 2 for two-pass encodes. NullOutput
	// discards the encode (-f null), used by the analysis pass.
	Pass       int
	PassLog    string
	NullOutput bool
}

// BuildArgs constructs the complete ffmpeg argument slice for one encoder
// invocation. The command always overwrites its output (-y), strips audio
// (-an), and emits machine-readable progress on stdout (-progress pipe:1).
func BuildArgs(p BuildParams) []string {
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = append(args, "ffmpeg", "-hide_banner", "-nostdin", "-loglevel", "error", "-y")

	// --- Hardware decode (macOS only) ---
	if p.HWDecode && runtime.GOOS == "darwin" {
		args = append(args, "-hwaccel", "videotoolbox")
	}

	// --- Input ---
	args = append(args, "-i", p.Input)

	// --- Fixed VP9 section: no audio, codec, threading, tiling ---
	args = append(args,
		"-an",
		"-c:v", "libvpx-vp9",
		"-pix_fmt", "yuv420p",
		"-row-mt", "1",
		"-tile-columns", strconv.Itoa(p.TileColumns),
		"-tile-rows", strconv.Itoa(p.TileRows),
		"-threads", strconv.Itoa(p.Threads),
		"-aq-mode", strconv.Itoa(p.AQMode),
		"-auto-alt-ref", "1",
		"-lag-in-frames", "25",
		"-cpu-used", strconv.Itoa(p.Speed),
		"-deadline", p.Deadline,
	)

	// --- Rate control ---
	if p.Bitrate != "" {
		args = append(args, "-b:v", p.Bitrate)
	} else {
		args = append(args, "-crf", strconv.Itoa(p.CRF), "-b:v", "0")
	}

	// --- Two-pass bookkeeping ---
	if p.Pass > 0 && p.PassLog != "" {
		args = append(args, "-pass", strconv.Itoa(p.Pass), "-passlogfile", p.PassLog)
	}

	// --- Progress stream and output ---
	args = append(args, "-progress", "pipe:1", "-nostats")
	if p.NullOutput {
		args = append(args, "-f", "null", nullDevice())
	} else {
		args = append(args, p.Output)
	}

	return args
}

func nullDevice() string {
	if runtime.GOOS == "windows" {
		return "NUL"
	}
	return "/dev/null"
}
