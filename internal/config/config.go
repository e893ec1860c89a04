// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation. All defaults match the VP9 flag set of the original chonga
// scripts so existing invocations keep producing identical encodes.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// --- Enum types for validated string fields ---

// Deadline is the libvpx deadline preset.
type Deadline string

const (
	DeadlineGood     Deadline = "good"     // Balanced (default).
	DeadlineBest     Deadline = "best"     // Highest quality, slowest.
	DeadlineRealtime Deadline = "realtime" // Fastest, lowest quality.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Preset bundles the quality knobs that move together: CRF, encoder speed
// (-cpu-used), and the libvpx deadline.
type Preset struct {
	Name     string
	CRF      int
	Speed    int
	Deadline Deadline
}

// Presets in display order. "balanced" is the default.
var Presets = []Preset{
	{Name: "quality", CRF: 28, Speed: 0, Deadline: DeadlineBest},
	{Name: "balanced", CRF: 30, Speed: 1, Deadline: DeadlineGood},
	{Name: "smaller", CRF: 32, Speed: 2, Deadline: DeadlineGood},
	{Name: "speedy", CRF: 30, Speed: 3, Deadline: DeadlineRealtime},
}

// PresetByName returns the preset with the given name, or false.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == strings.ToLower(strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Preset{}, false
}

// DefaultBitrate is used when bitrate mode is selected without a value.
const DefaultBitrate = "1M"

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths (set from positional args).
	InputPath  string   // Single-file mode.
	OutputPath string   // Single-file mode.
	Inputs     []string // Batch mode.

	// Mode selection.
	BatchMode bool // Convert each positional arg, deriving output paths.
	TUIMode   bool // Interactive terminal UI.
	CheckOnly bool // Run --check diagnostics and exit.

	// Rate control. The bitrate token is passed to -b:v and defaults to
	// "1M". Passing --crf clears it and selects quality-targeted mode
	// (-crf N -b:v 0) instead.
	Bitrate string
	CRF     int // Default: 30. Quality-targeted mode only.
	TwoPass bool

	// Encoder tuning.
	Speed       int      // -cpu-used. Default: 1.
	Deadline    Deadline // Default: "good".
	Threads     int      // 0 = all logical CPUs.
	TileColumns int      // -1 = auto from resolution.
	TileRows    int      // -1 = auto from resolution.
	AQMode      int      // Default: 1 (variance AQ).
	HWDecode    bool     // -hwaccel videotoolbox on macOS.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config with all defaults matching the original
// chonga scripts. Used as the base before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		Bitrate:     DefaultBitrate,
		CRF:         30,
		TwoPass:     false,
		Speed:       1,
		Deadline:    DeadlineGood,
		Threads:     0,
		TileColumns: -1,
		TileRows:    -1,
		AQMode:      1,
		HWDecode:    false,
		Verbose:     false,
		ColorMode:   ColorAuto,
	}
}

// bitrateToken matches a numeric value with an optional k/M suffix,
// e.g. "500k", "1M", "1.5M", "800000".
var bitrateToken = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[kKmM]?$`)

// ErrInvalidBitrate is wrapped into the error returned for malformed
// bitrate tokens so callers can classify the failure.
var ErrInvalidBitrate = errors.New("invalid bitrate")

// ValidateBitrate checks a bitrate token and returns it trimmed.
// The empty string is valid and selects CRF mode.
func ValidateBitrate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	if !bitrateToken.MatchString(s) {
		return "", fmt.Errorf("%w %q (use e.g. 500k or 1M)", ErrInvalidBitrate, raw)
	}
	return s, nil
}

// ParseBitrateBPS converts a bitrate token to bits per second for the
// output-size advisory. Returns 0 for tokens it cannot interpret.
func ParseBitrateBPS(token string) int64 {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return 0
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0
	}
	return int64(n * mult)
}

// Validate checks enum fields and value ranges. Positional-arg requirements
// are checked during flag parsing since they depend on the selected mode.
func (c *Config) Validate() error {
	switch c.Deadline {
	case DeadlineGood, DeadlineBest, DeadlineRealtime:
		// valid
	default:
		return errors.New("invalid deadline (use 'good', 'best' or 'realtime')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	bitrate, err := ValidateBitrate(c.Bitrate)
	if err != nil {
		return err
	}
	c.Bitrate = bitrate

	if c.CRF < 0 || c.CRF > 63 {
		return fmt.Errorf("CRF %d out of range (0-63)", c.CRF)
	}
	if c.Speed < 0 || c.Speed > 5 {
		return fmt.Errorf("speed %d out of range (0-5)", c.Speed)
	}
	if c.Threads < 0 {
		return errors.New("threads must not be negative")
	}
	if c.AQMode < 0 || c.AQMode > 3 {
		return fmt.Errorf("aq-mode %d out of range (0-3)", c.AQMode)
	}
	if c.TwoPass && c.Bitrate == "" {
		return errors.New("--two-pass requires bitrate mode (not --crf)")
	}
	return nil
}
