package encode

import (
	"strconv"
	"strings"
	"time"
)

// State tracks one conversion's progress: the probed total duration as the
// percentage denominator, the most recently parsed output timestamp, and
// the wall clock at spawn time. Mutated only by the runner's parse loop.
type State struct {
	Total   time.Duration
	Current time.Duration
	Start   time.Time
}

// Update records a newly parsed output timestamp.
func (s *State) Update(d time.Duration) {
	s.Current = d
}

// Fraction returns progress as a value clamped to [0, 1].
func (s *State) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}
	f := float64(s.Current) / float64(s.Total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Percent returns progress as a percentage clamped to [0, 100].
func (s *State) Percent() float64 {
	return s.Fraction() * 100
}

// Remaining estimates time left from elapsed wall-clock time and the
// current fraction: elapsed * (1-f) / f. The boolean is false while the
// fraction is still zero (no estimate possible yet).
func (s *State) Remaining(now time.Time) (time.Duration, bool) {
	f := s.Fraction()
	if f <= 0 {
		return 0, false
	}
	elapsed := now.Sub(s.Start)
	return time.Duration(float64(elapsed) * (1 - f) / f), true
}

// ParseProgressLine extracts an output timestamp from one line of the
// encoder's -progress key=value stream. Recognized keys: out_time_us and
// out_time_ms (both microseconds; ffmpeg's _ms key is a historical
// misnomer) and out_time (HH:MM:SS.ff). Lines without a recognizable
// timestamp return ok=false and are ignored by the caller, never an error.
func ParseProgressLine(line string) (d time.Duration, ok bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return time.Duration(us) * time.Microsecond, true
	case "out_time":
		return parseClockTime(value)
	default:
		return 0, false
	}
}

// IsEndMarker reports whether the line is ffmpeg's final "progress=end"
// batch marker.
func IsEndMarker(line string) bool {
	return strings.TrimSpace(line) == "progress=end"
}

// parseClockTime parses an HH:MM:SS.ff timestamp (fractional part
// optional) into a duration. "N/A" and malformed values report ok=false.
func parseClockTime(s string) (time.Duration, bool) {
	if s == "" || s == "N/A" {
		return 0, false
	}

	hms, frac, _ := strings.Cut(s, ".")
	parts := strings.Split(hms, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	seconds, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, false
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second

	if frac != "" {
		n, err := strconv.Atoi(frac)
		if err != nil || n < 0 {
			return 0, false
		}
		scale := 1.0
		for i := 0; i < len(frac); i++ {
			scale *= 10
		}
		d += time.Duration(float64(n) / scale * float64(time.Second))
	}
	return d, true
}
