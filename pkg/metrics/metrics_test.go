package metrics

import (
	"testing"
	"time"
)

// The gauge store is optional at runtime; writers and readers must both be
// no-ops before InitMetrics or after Close.
func TestUninitializedStore(t *testing.T) {
	SetGauge("system_cpuuse", 42)

	end := time.Now().Unix()
	points, err := Range("system_cpuuse", end-3600, end)
	if err != nil {
		t.Fatalf("Range() error = %v, want nil", err)
	}
	if points != nil {
		t.Errorf("Range() = %v, want nil without a store", points)
	}

	if err := Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
