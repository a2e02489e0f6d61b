package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nexusvm/console/internal/domain"
)

// metricsSession subscribes to the periodic metrics feed and retains the
// most recent samples in a fixed-capacity ring.
type metricsSession struct {
	vmID   string
	logger *zap.Logger

	mu      sync.Mutex
	status  Status
	stream  MetricsStream
	ring    *Ring
	closing bool
}

func newMetricsSession(vmID string, logger *zap.Logger) *metricsSession {
	return &metricsSession{
		vmID:   vmID,
		logger: logger.Named("metrics"),
		status: StatusIdle,
		ring:   NewRing(MetricsHistorySize),
	}
}

func (s *metricsSession) connect(ctx context.Context, dialer MetricsDialer) error {
	s.mu.Lock()
	s.status = StatusConnecting
	s.mu.Unlock()

	stream, err := dialer.DialMetrics(ctx, s.vmID)
	if err != nil {
		s.mu.Lock()
		s.status = StatusError
		s.mu.Unlock()
		s.logger.Warn("Metrics connect failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		stream.Close()
		return nil
	}
	s.stream = stream
	s.status = StatusConnected
	s.mu.Unlock()

	s.logger.Info("Metrics connected")
	go s.readPump(stream)
	return nil
}

func (s *metricsSession) readPump(stream MetricsStream) {
	for {
		sample, err := stream.ReadSample()
		if err != nil {
			s.mu.Lock()
			deliberate := s.closing
			if deliberate {
				s.status = StatusDisconnected
			} else {
				s.status = StatusError
			}
			s.mu.Unlock()
			if !deliberate {
				s.logger.Warn("Metrics stream closed unexpectedly", zap.Error(err))
			}
			return
		}

		s.mu.Lock()
		if !s.closing {
			s.ring.Append(sample)
		}
		s.mu.Unlock()
	}
}

func (s *metricsSession) history() []domain.MetricsSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Samples()
}

func (s *metricsSession) close() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	stream := s.stream
	s.stream = nil
	s.status = StatusDisconnected
	s.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
}

func (s *metricsSession) currentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
