package display

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NewEncodeBar builds the single-line progress bar for one encode. The bar
// is keyed on the probed total duration in milliseconds; the runner feeds
// it the encoder's output timestamp as it advances. Rendering goes to
// stderr so the progress stream never mixes with log output redirection.
func NewEncodeBar(total time.Duration, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total.Milliseconds(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}

// BarReporter adapts the terminal progress bar to the runner's reporter
// interface. Quiet mode suppresses rendering entirely, for non-TTY runs.
type BarReporter struct {
	Description string
	Quiet       bool

	bar *progressbar.ProgressBar
}

func (r *BarReporter) Begin(total time.Duration) {
	if r.Quiet {
		return
	}
	r.bar = NewEncodeBar(total, r.Description)
}

func (r *BarReporter) Update(current time.Duration) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Set64(current.Milliseconds())
}

func (r *BarReporter) Done() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
}
