package session

import (
	"github.com/nexusvm/console/internal/domain"
)

// MetricsHistorySize is how many samples the metrics session retains.
// At the backend's steady emit interval this covers the last minute.
const MetricsHistorySize = 60

// Ring is a fixed-capacity buffer of metrics samples. Once full, each
// append evicts the oldest sample. Not safe for concurrent use; the
// owning session serializes access.
type Ring struct {
	buf   []domain.MetricsSample
	head  int
	count int
}

// NewRing creates a ring holding at most capacity samples.
func NewRing(capacity int) *Ring {
	return &Ring{
		buf: make([]domain.MetricsSample, capacity),
	}
}

// Append adds a sample, evicting the oldest if the ring is full.
func (r *Ring) Append(sample domain.MetricsSample) {
	idx := (r.head + r.count) % len(r.buf)
	r.buf[idx] = sample
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

// Samples returns the retained samples in arrival order, oldest first.
func (r *Ring) Samples() []domain.MetricsSample {
	out := make([]domain.MetricsSample, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of retained samples.
func (r *Ring) Len() int {
	return r.count
}
