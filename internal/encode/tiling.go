package encode

// ChooseTiling picks VP9 tile-columns and tile-rows (both log2 values)
// from the source resolution. More columns improve multi-thread scaling;
// rows only help for very tall or high-resolution sources. Unknown
// dimensions get safe defaults.
func ChooseTiling(width, height int) (tileColumns, tileRows int) {
	if width <= 0 || height <= 0 {
		return 1, 0
	}

	switch {
	case width > 3840:
		tileColumns = 4
	case width > 1920:
		tileColumns = 3
	case width > 1280:
		tileColumns = 2
	case width > 640:
		tileColumns = 1
	default:
		tileColumns = 0
	}

	if height > 1440 {
		tileRows = 1
	}
	return tileColumns, tileRows
}
