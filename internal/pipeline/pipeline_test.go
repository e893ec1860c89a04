package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/backmassage/chonga/internal/config"
	"github.com/backmassage/chonga/internal/logging"
)

// --- OutputPath tests ---

func TestOutputPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"clip.mp4", "clip.webm"},
		{"clip.MP4", "clip.webm"},
		{"movie.MoV", "movie.webm"},
		{"/some/dir/video.mkv", "/some/dir/video.webm"},
		{"archive.tar.mp4", "archive.tar.webm"},
		{"noext", "noext.webm"},
	}
	for _, tc := range cases {
		if got := OutputPath(tc.in); got != tc.want {
			t.Errorf("OutputPath(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- Expand tests ---

func TestExpand_DirFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	touch(t, dir, "clip.mp4")
	touch(t, dir, "clip.webm") // previous output, must not re-enter the batch
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")

	files, err := Expand([]string{dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{"clip.mp4", "movie.mkv"}
	if !sliceEqual(basenames(files), want) {
		t.Errorf("got %v, want %v", basenames(files), want)
	}
}

func TestExpand_MixedFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.mp4")
	touch(t, dir, "a.mov")
	other := t.TempDir()
	touch(t, other, "z.mp4")
	single := filepath.Join(other, "z.mp4")

	files, err := Expand([]string{single, dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// Explicit files keep argument order; directory contents are sorted
	// and appended.
	want := []string{"z.mp4", "a.mov", "b.mp4"}
	if !sliceEqual(basenames(files), want) {
		t.Errorf("got %v, want %v", basenames(files), want)
	}
}

func TestExpand_KeepsMissingPaths(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.mp4")
	files, err := Expand([]string{missing})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(files) != 1 || files[0] != missing {
		t.Errorf("missing path should stay listed, got %v", files)
	}
}

func TestExpand_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "MOVIE.MKV")
	touch(t, dir, "Show.Mp4")

	files, err := Expand([]string{dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2 (case-insensitive ext matching)", len(files))
	}
}

func TestExpand_Recursive(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "sub", "deeper"), 0o755)
	touch(t, filepath.Join(dir, "sub", "deeper"), "ep01.mkv")
	touch(t, dir, "top.mp4")

	files, err := Expand([]string{dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2", len(files))
	}
}

// --- RunStats tests ---

func TestRunStats_SpaceSaved(t *testing.T) {
	s := RunStats{TotalInputBytes: 1000, TotalOutputBytes: 600}
	if got := s.SpaceSaved(); got != 400 {
		t.Errorf("SpaceSaved: got %d, want 400", got)
	}

	s2 := RunStats{TotalInputBytes: 100, TotalOutputBytes: 150}
	if got := s2.SpaceSaved(); got != -50 {
		t.Errorf("SpaceSaved (negative): got %d, want -50", got)
	}
}

// --- Batch integration tests (fake tools on PATH) ---

const fakeProbeOK = `cat <<'EOF'
{
  "format": {"filename": "in.mp4", "format_name": "mov,mp4", "duration": "1.000000", "size": "5000"},
  "streams": [{"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720}]
}
EOF`

// fakeEncode succeeds for every input except ones whose name contains
// "broken", which exit 2 without writing output.
const fakeEncode = `case "$*" in
  *broken*) echo "decode error" >&2; exit 2;;
esac
echo "out_time_us=500000"
echo "progress=end"
eval "out=\${$#}"
printf "webm" > "$out"`

func installFakeTools(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts need a POSIX shell")
	}
	dir := t.TempDir()
	for name, script := range map[string]string{"ffprobe": fakeProbeOK, "ffmpeg": fakeEncode} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func newTestLogger(t *testing.T, cfg *config.Config) *logging.Logger {
	t.Helper()
	cfg.ColorMode = config.ColorNever
	log, err := logging.NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

// A failing file in the middle of a batch must not stop the files after it.
func TestRun_ContinuesPastFailure(t *testing.T) {
	installFakeTools(t)
	dir := t.TempDir()
	writeMedia(t, dir, "a.mp4")
	writeMedia(t, dir, "broken.mp4")
	writeMedia(t, dir, "c.mp4")

	cfg := config.DefaultConfig()
	cfg.BatchMode = true
	cfg.Inputs = []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "broken.mp4"),
		filepath.Join(dir, "c.mp4"),
	}
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)

	if stats.Total != 3 {
		t.Errorf("Total: got %d, want 3", stats.Total)
	}
	if stats.Converted != 2 {
		t.Errorf("Converted: got %d, want 2", stats.Converted)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed: got %d, want 1", stats.Failed)
	}

	for _, name := range []string{"a.webm", "c.webm"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("output %s missing: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.webm")); err == nil {
		t.Error("broken.webm should not exist")
	}
}

func TestRun_SkipsExistingOutput(t *testing.T) {
	installFakeTools(t)
	dir := t.TempDir()
	writeMedia(t, dir, "a.mp4")
	touch(t, dir, "a.webm")

	cfg := config.DefaultConfig()
	cfg.BatchMode = true
	cfg.Inputs = []string{filepath.Join(dir, "a.mp4")}
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)
	if stats.Skipped != 1 || stats.Converted != 0 {
		t.Errorf("got Skipped=%d Converted=%d, want 1/0", stats.Skipped, stats.Converted)
	}
}

func TestRun_TooSmallFileFails(t *testing.T) {
	installFakeTools(t)
	dir := t.TempDir()
	touch(t, dir, "stub.mp4") // zero bytes, under the corruption floor

	cfg := config.DefaultConfig()
	cfg.BatchMode = true
	cfg.Inputs = []string{filepath.Join(dir, "stub.mp4")}
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)
	if stats.Failed != 1 {
		t.Errorf("Failed: got %d, want 1", stats.Failed)
	}
}

func TestConvertOne_ExplicitOutput(t *testing.T) {
	installFakeTools(t)
	dir := t.TempDir()
	writeMedia(t, dir, "clip.mp4")

	cfg := config.DefaultConfig()
	cfg.InputPath = filepath.Join(dir, "clip.mp4")
	cfg.OutputPath = filepath.Join(dir, "custom-name.webm")
	log := newTestLogger(t, &cfg)

	if err := ConvertOne(context.Background(), &cfg, log); err != nil {
		t.Fatalf("ConvertOne: %v", err)
	}
	if _, err := os.Stat(cfg.OutputPath); err != nil {
		t.Errorf("explicit output path not honored: %v", err)
	}
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

// writeMedia creates a file large enough to pass the corruption floor.
func writeMedia(t *testing.T, dir, name string) {
	t.Helper()
	data := bytes.Repeat([]byte("v"), 2048)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
