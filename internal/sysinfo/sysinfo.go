// Package sysinfo answers the two system questions the encoder planning
// needs: how many threads to hand libvpx, and whether the destination has
// room for the projected output.
package sysinfo

import (
	"path/filepath"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
)

// ThreadCount resolves the encoder thread count. A positive requested value
// wins; otherwise all logical CPUs are used, falling back to runtime.NumCPU
// when the system query fails.
func ThreadCount(requested int) int {
	if requested > 0 {
		return requested
	}
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	if n <= 0 {
		n = 4
	}
	return n
}

// FreeBytesAt returns the free space on the filesystem holding path's
// parent directory, or 0 when it cannot be determined (the advisory is
// skipped in that case rather than failing the job).
func FreeBytesAt(path string) uint64 {
	usage, err := disk.Usage(filepath.Dir(path))
	if err != nil || usage == nil {
		return 0
	}
	return usage.Free
}
