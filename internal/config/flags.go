package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into rate control, encoder tuning, display, and utility.
// Sentinel-valued flags (e.g. --crf, --preset) are applied after Parse so
// Config defaults hold unless the user passes the flag.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, wrong positional
// args for the selected mode).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("chonga", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	// Override flags: we capture values then apply to cfg after Parse,
	// so that defaults from DefaultConfig() hold unless the user passes
	// the flag, and so mode interactions (--crf vs --bitrate) can be
	// resolved in one place.
	var ov overrides

	defineRateFlags(fs, cfg, &ov)
	defineTuningFlags(fs, cfg)
	defineModeFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &ov)
	defineUtilityFlags(fs, &ov)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if ov.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if ov.showVersion {
		fmt.Fprintln(os.Stdout, "chonga v"+version)
		os.Exit(0)
	}

	if err := applyOverrides(cfg, &ov); err != nil {
		return err
	}
	return parsePositionalArgs(fs, cfg)
}

// overrides holds flag values that are applied after Parse. These either
// carry mode interactions (crf/bitrate/preset precedence) or trigger exit
// (showHelp, showVersion).
type overrides struct {
	bitrate     string
	bitrateSet  bool
	crf         int
	preset      string
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineRateFlags registers -b/--bitrate, --crf, --preset, --two-pass.
func defineRateFlags(fs *flag.FlagSet, cfg *Config, ov *overrides) {
	fs.Func("bitrate", "Target video bitrate (e.g. 500k, 1M); empty uses 1M", setBitrate(ov))
	fs.Func("b", "Same as --bitrate", setBitrate(ov))
	fs.IntVar(&ov.crf, "crf", -1, "CRF quality (0-63); selects quality mode instead of bitrate")
	fs.StringVar(&ov.preset, "preset", "", "Quality preset: quality | balanced | smaller | speedy")
	fs.BoolVar(&cfg.TwoPass, "two-pass", false, "Two-pass encode (bitrate mode only)")
}

func setBitrate(ov *overrides) func(string) error {
	return func(s string) error {
		ov.bitrate = s
		ov.bitrateSet = true
		return nil
	}
}

// defineTuningFlags registers --speed, --deadline, --threads, tiling and AQ.
func defineTuningFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Speed, "speed", cfg.Speed, "VP9 -cpu-used (0=best quality, 5=fastest)")
	fs.Var(&deadlineValue{&cfg.Deadline}, "deadline", "libvpx deadline: good | best | realtime")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "Encoder threads (0=all logical CPUs)")
	fs.IntVar(&cfg.TileColumns, "tile-columns", cfg.TileColumns, "VP9 tile-columns (log2); -1=auto by resolution")
	fs.IntVar(&cfg.TileRows, "tile-rows", cfg.TileRows, "VP9 tile-rows (log2); -1=auto by resolution")
	fs.IntVar(&cfg.AQMode, "aq-mode", cfg.AQMode, "VP9 AQ mode (0=off, 1=variance)")
	fs.BoolVar(&cfg.HWDecode, "hwdec", false, "Hardware-accelerated decode (videotoolbox on macOS)")
}

// defineModeFlags registers --batch, --tui, --check.
func defineModeFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.BatchMode, "batch", false, "Convert every FILE argument, deriving .webm output paths")
	fs.BoolVar(&cfg.BatchMode, "B", false, "Same as --batch")
	fs.BoolVar(&cfg.TUIMode, "tui", false, "Interactive terminal UI")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, ov *overrides) {
	fs.BoolVar(&ov.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&ov.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, ov *overrides) {
	fs.BoolVar(&ov.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&ov.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&ov.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&ov.showHelp, "h", false, "Same as --help")
}

// applyOverrides resolves rate-control mode and color flags into cfg.
// Precedence: --bitrate > --crf > --preset CRF > default bitrate mode.
// An empty --bitrate value falls back to the 1M default.
func applyOverrides(cfg *Config, ov *overrides) error {
	if ov.preset != "" {
		p, ok := PresetByName(ov.preset)
		if !ok {
			return fmt.Errorf("unknown preset %q (use quality, balanced, smaller or speedy)", ov.preset)
		}
		cfg.CRF = p.CRF
		cfg.Speed = p.Speed
		cfg.Deadline = p.Deadline
	}

	if ov.crf >= 0 {
		if ov.bitrateSet && strings.TrimSpace(ov.bitrate) != "" {
			return fmt.Errorf("--bitrate and --crf are mutually exclusive")
		}
		cfg.CRF = ov.crf
		cfg.Bitrate = ""
	} else if ov.bitrateSet {
		if strings.TrimSpace(ov.bitrate) == "" {
			cfg.Bitrate = DefaultBitrate
		} else {
			cfg.Bitrate = ov.bitrate
		}
	}

	if ov.noColor {
		cfg.ColorMode = ColorNever
	} else if ov.forceColor {
		cfg.ColorMode = ColorAlways
	}
	return nil
}

// parsePositionalArgs validates positional arguments for the selected mode:
// none for --tui/--check, at least one FILE for --batch, and exactly
// INPUT OUTPUT otherwise.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()

	switch {
	case cfg.CheckOnly, cfg.TUIMode:
		return nil
	case cfg.BatchMode:
		if len(args) == 0 {
			return fmt.Errorf("batch mode needs at least one FILE argument")
		}
		cfg.Inputs = args
		return nil
	default:
		if len(args) != 2 {
			return fmt.Errorf("need exactly INPUT and OUTPUT (or --batch FILE...)")
		}
		cfg.InputPath = args[0]
		cfg.OutputPath = args[1]
		return nil
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "chonga v" + version + " - MP4 to WebM (VP9) shrinker"},
		{"", ""},
		{"  chonga [OPTIONS] <input> <output>", ""},
		{"  chonga --batch [OPTIONS] <file>...", ""},
		{"  chonga --tui", ""},
		{"", ""},
		{"Rate control", ""},
		{"  -b, --bitrate <value>", "Target video bitrate (default: 1M)"},
		{"  --crf <value>", "CRF quality instead of bitrate (18-36 typical)"},
		{"  --preset <name>", "quality | balanced | smaller | speedy"},
		{"  --two-pass", "Two-pass encode (bitrate mode only)"},
		{"", ""},
		{"Encoder tuning", ""},
		{"  --speed <0-5>", "VP9 -cpu-used (default: 1)"},
		{"  --deadline <name>", "good | best | realtime (default: good)"},
		{"  --threads <n>", "Encoder threads (default: all logical CPUs)"},
		{"  --tile-columns <n>", "VP9 tile-columns log2 (-1=auto)"},
		{"  --tile-rows <n>", "VP9 tile-rows log2 (-1=auto)"},
		{"  --aq-mode <0-3>", "VP9 adaptive quantization (default: 1)"},
		{"  --hwdec", "Hardware decode (videotoolbox on macOS)"},
		{"", ""},
		{"Modes", ""},
		{"  -B, --batch", "Convert each FILE to <stem>.webm; continue past failures"},
		{"", "(exit status is non-zero if any file failed)"},
		{"  --tui", "Interactive terminal UI"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, libvpx-vp9)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintf(os.Stderr, "%*s%s\n", col1, "", l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so the Deadline enum works with flag.Var.

type deadlineValue struct{ p *Deadline }

func (d *deadlineValue) String() string {
	if d.p == nil {
		return ""
	}
	return string(*d.p)
}

func (d *deadlineValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "good":
		*d.p = DeadlineGood
	case "best":
		*d.p = DeadlineBest
	case "realtime":
		*d.p = DeadlineRealtime
	default:
		return fmt.Errorf("invalid deadline %q (use 'good', 'best' or 'realtime')", s)
	}
	return nil
}
