package trace

import "testing"

func TestMemoryThresholdClamped(t *testing.T) {
	threshold := MemoryThreshold()
	if threshold < minReadThreshold || threshold > maxReadThreshold {
		t.Fatalf("expected threshold within [%d, %d]; got %d", minReadThreshold, maxReadThreshold, threshold)
	}
}
