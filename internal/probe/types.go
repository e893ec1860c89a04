package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64 // Seconds, fractional.
	Size       int64
	BitRate    int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	Width         int
	Height        int
	AvgFrameRate  string
	IsAttachedPic bool
}

// Result is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type Result struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
}

// Duration returns the container duration in seconds.
func (r *Result) Duration() float64 {
	return r.Format.Duration
}

// Dimensions returns the primary video stream's width and height, or
// (0, 0) when no usable video stream was found.
func (r *Result) Dimensions() (width, height int) {
	if r.PrimaryVideo == nil {
		return 0, 0
	}
	return r.PrimaryVideo.Width, r.PrimaryVideo.Height
}
