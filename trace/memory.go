package trace

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

const (
	minReadThreshold = 256 << 20 // 256 MiB
	maxReadThreshold = 2 << 30   // 2 GiB
)

// AvailableMemory reports the system memory available for file buffering,
// in bytes. Returns 0 when the information cannot be obtained; callers
// fall back to the minimum threshold.
func AvailableMemory() uint64 {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemAvailable:" {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb << 10
	}
	return 0
}

// MemoryThreshold bounds the size of a single read buffer: half the
// available memory, clamped to [256 MiB, 2 GiB]. Advisory only.
func MemoryThreshold() uint64 {
	threshold := AvailableMemory() / 2
	if threshold < minReadThreshold {
		return minReadThreshold
	}
	if threshold > maxReadThreshold {
		return maxReadThreshold
	}
	return threshold
}
