package encode

import (
	"strings"
	"testing"
)

func testParams() BuildParams {
	return BuildParams{
		Input:       "in.mp4",
		Output:      "out.webm",
		Bitrate:     "1M",
		CRF:         30,
		Speed:       1,
		Deadline:    "good",
		Threads:     4,
		TileColumns: 2,
		TileRows:    0,
		AQMode:      1,
	}
}

// hasPair reports whether flag appears in args immediately followed by value.
func hasPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestBuildArgs_BitrateMode(t *testing.T) {
	p := testParams()
	p.Bitrate = "500k"
	args := BuildArgs(p)

	if args[0] != "ffmpeg" {
		t.Errorf("args[0]: got %q, want ffmpeg", args[0])
	}
	if !hasPair(args, "-b:v", "500k") {
		t.Errorf("missing -b:v 500k in %v", args)
	}
	if hasFlag(args, "-crf") {
		t.Errorf("-crf present in bitrate mode: %v", args)
	}
	if !hasFlag(args, "-an") {
		t.Errorf("missing -an (audio must be stripped): %v", args)
	}
	if !hasPair(args, "-c:v", "libvpx-vp9") {
		t.Errorf("missing -c:v libvpx-vp9: %v", args)
	}
	if !hasPair(args, "-progress", "pipe:1") || !hasFlag(args, "-nostats") {
		t.Errorf("missing progress stream flags: %v", args)
	}
	if args[len(args)-1] != "out.webm" {
		t.Errorf("last arg: got %q, want out.webm", args[len(args)-1])
	}
}

func TestBuildArgs_CRFMode(t *testing.T) {
	p := testParams()
	p.Bitrate = ""
	p.CRF = 28
	args := BuildArgs(p)

	if !hasPair(args, "-crf", "28") {
		t.Errorf("missing -crf 28: %v", args)
	}
	if !hasPair(args, "-b:v", "0") {
		t.Errorf("CRF mode needs -b:v 0: %v", args)
	}
}

func TestBuildArgs_Tuning(t *testing.T) {
	p := testParams()
	p.Speed = 3
	p.Deadline = "realtime"
	p.Threads = 8
	p.TileColumns = 3
	p.TileRows = 1
	args := BuildArgs(p)

	checks := [][2]string{
		{"-cpu-used", "3"},
		{"-deadline", "realtime"},
		{"-threads", "8"},
		{"-tile-columns", "3"},
		{"-tile-rows", "1"},
		{"-row-mt", "1"},
		{"-aq-mode", "1"},
		{"-auto-alt-ref", "1"},
		{"-lag-in-frames", "25"},
		{"-pix_fmt", "yuv420p"},
	}
	for _, c := range checks {
		if !hasPair(args, c[0], c[1]) {
			t.Errorf("missing %s %s in %v", c[0], c[1], args)
		}
	}
}

func TestBuildArgs_TwoPass(t *testing.T) {
	p := testParams()
	p.Pass = 1
	p.PassLog = "out.passlog"
	p.NullOutput = true
	args := BuildArgs(p)

	if !hasPair(args, "-pass", "1") || !hasPair(args, "-passlogfile", "out.passlog") {
		t.Errorf("pass 1 bookkeeping missing: %v", args)
	}
	if !hasPair(args, "-f", "null") {
		t.Errorf("pass 1 should discard output: %v", args)
	}
	if hasFlag(args, "out.webm") {
		t.Errorf("pass 1 should not write the real output: %v", args)
	}

	p.Pass = 2
	p.NullOutput = false
	args = BuildArgs(p)
	if !hasPair(args, "-pass", "2") {
		t.Errorf("pass 2 flag missing: %v", args)
	}
	if args[len(args)-1] != "out.webm" {
		t.Errorf("pass 2 should write the real output: %v", args)
	}
}

func TestBuildArgs_InputBeforeOutput(t *testing.T) {
	args := BuildArgs(testParams())
	joined := strings.Join(args, " ")
	inIdx := strings.Index(joined, "-i in.mp4")
	outIdx := strings.LastIndex(joined, "out.webm")
	if inIdx < 0 || outIdx < 0 || inIdx > outIdx {
		t.Errorf("input/output ordering wrong: %v", args)
	}
}

func TestChooseTiling(t *testing.T) {
	cases := []struct {
		w, h       int
		cols, rows int
	}{
		{7680, 4320, 4, 1},
		{3840, 2160, 3, 1},
		{2560, 1440, 3, 0},
		{1920, 1080, 2, 0},
		{1280, 720, 1, 0},
		{854, 480, 1, 0},
		{640, 360, 0, 0},
		{0, 0, 1, 0}, // unknown resolution: safe default
	}
	for _, tc := range cases {
		cols, rows := ChooseTiling(tc.w, tc.h)
		if cols != tc.cols || rows != tc.rows {
			t.Errorf("ChooseTiling(%d, %d): got %d/%d, want %d/%d",
				tc.w, tc.h, cols, rows, tc.cols, tc.rows)
		}
	}
}
