package session

import (
	"testing"
	"time"

	"github.com/nexusvm/console/internal/domain"
)

func TestRing_HoldsLastSixtyInOrder(t *testing.T) {
	ring := NewRing(MetricsHistorySize)
	base := time.Now()

	for i := 0; i < 100; i++ {
		ring.Append(domain.MetricsSample{
			CPUPercent: float64(i),
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		})
	}

	samples := ring.Samples()
	if len(samples) != MetricsHistorySize {
		t.Fatalf("Expected %d samples, got %d", MetricsHistorySize, len(samples))
	}
	for i, s := range samples {
		want := float64(40 + i) // samples 40..99 survive
		if s.CPUPercent != want {
			t.Fatalf("Sample %d: expected CPU %.0f, got %.0f", i, want, s.CPUPercent)
		}
	}
}

func TestRing_PartialFill(t *testing.T) {
	ring := NewRing(MetricsHistorySize)
	for i := 0; i < 10; i++ {
		ring.Append(domain.MetricsSample{CPUPercent: float64(i)})
	}

	if ring.Len() != 10 {
		t.Fatalf("Expected 10 samples, got %d", ring.Len())
	}
	samples := ring.Samples()
	for i, s := range samples {
		if s.CPUPercent != float64(i) {
			t.Fatalf("Sample %d out of order: got %.0f", i, s.CPUPercent)
		}
	}
}

func TestRing_Empty(t *testing.T) {
	ring := NewRing(MetricsHistorySize)
	if ring.Len() != 0 {
		t.Errorf("Expected empty ring, got %d", ring.Len())
	}
	if len(ring.Samples()) != 0 {
		t.Error("Expected no samples")
	}
}
