package session

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"
)

// consoleSession pumps one console byte stream into a sink and forwards
// keystrokes back, only while the stream reports ready.
type consoleSession struct {
	vmID   string
	sink   io.Writer
	logger *zap.Logger

	mu      sync.Mutex
	status  Status
	stream  ConsoleStream
	closing bool
}

func newConsoleSession(vmID string, sink io.Writer, logger *zap.Logger) *consoleSession {
	return &consoleSession{
		vmID:   vmID,
		sink:   sink,
		logger: logger.Named("console"),
		status: StatusIdle,
	}
}

func (s *consoleSession) connect(ctx context.Context, dialer ConsoleDialer) error {
	s.mu.Lock()
	s.status = StatusConnecting
	s.mu.Unlock()

	stream, err := dialer.DialConsole(ctx, s.vmID)
	if err != nil {
		s.mu.Lock()
		s.status = StatusError
		s.mu.Unlock()
		s.logger.Warn("Console connect failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	if s.closing {
		// Torn down while the dial was in flight.
		s.mu.Unlock()
		stream.Close()
		return nil
	}
	s.stream = stream
	s.status = StatusConnected
	s.mu.Unlock()

	s.logger.Info("Console connected")
	go s.readPump(stream)
	return nil
}

// readPump normalizes inbound frames to the byte sink. Text and binary
// frames both carry console output and land in the same sink.
func (s *consoleSession) readPump(stream ConsoleStream) {
	for {
		_, data, err := stream.ReadFrame()
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
				s.logger.Warn("Console stream closed unexpectedly", zap.Error(err))
			}
			return
		}
		if len(data) == 0 {
			continue
		}
		if _, err := s.sink.Write(data); err != nil {
			s.logger.Debug("Console sink write failed", zap.Error(err))
		}
	}
}

// writeInput forwards keystrokes immediately, without buffering. Writes
// attempted while not connected are dropped.
func (s *consoleSession) writeInput(data []byte) {
	s.mu.Lock()
	stream := s.stream
	ready := s.status == StatusConnected
	s.mu.Unlock()

	if !ready || stream == nil {
		return
	}
	if err := stream.WriteInput(data); err != nil {
		s.logger.Debug("Console input dropped", zap.Error(err))
	}
}

func (s *consoleSession) close() {
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

func (s *consoleSession) currentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
