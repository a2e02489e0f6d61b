// Package session manages the long-lived interactive sessions a VM view
// holds against a running VM: one console byte stream and one bounded
// real-time metrics feed.
package session

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/nexusvm/console/internal/domain"
)

// Status is the lifecycle state of a console or metrics session.
type Status string

const (
	StatusIdle         Status = "IDLE"
	StatusConnecting   Status = "CONNECTING"
	StatusConnected    Status = "CONNECTED"
	StatusDisconnected Status = "DISCONNECTED"
	StatusError        Status = "ERROR"
)

// ConsoleStream is a bidirectional byte stream to a VM's console
// endpoint. Inbound frames arrive as text or binary; both carry console
// output bytes.
type ConsoleStream interface {
	// ReadFrame returns the next inbound frame. messageType follows the
	// websocket convention (TextMessage or BinaryMessage).
	ReadFrame() (messageType int, data []byte, err error)
	// WriteInput forwards keystrokes to the guest.
	WriteInput(data []byte) error
	Close() error
}

// MetricsStream is a push subscription delivering one sample per emit
// interval.
type MetricsStream interface {
	ReadSample() (domain.MetricsSample, error)
	Close() error
}

// ConsoleDialer opens console streams.
type ConsoleDialer interface {
	DialConsole(ctx context.Context, vmID string) (ConsoleStream, error)
}

// MetricsDialer opens metrics subscriptions.
type MetricsDialer interface {
	DialMetrics(ctx context.Context, vmID string) (MetricsStream, error)
}

// Manager owns at most one console session and one metrics session for a
// single VM view. Sessions are created on explicit connect only and are
// torn down deterministically when the view goes away.
type Manager struct {
	vmID          string
	consoleDialer ConsoleDialer
	metricsDialer MetricsDialer
	logger        *zap.Logger

	mu      sync.Mutex
	console *consoleSession
	metrics *metricsSession
}

// NewManager creates a session manager for one VM view.
func NewManager(vmID string, consoleDialer ConsoleDialer, metricsDialer MetricsDialer, logger *zap.Logger) *Manager {
	return &Manager{
		vmID:          vmID,
		consoleDialer: consoleDialer,
		metricsDialer: metricsDialer,
		logger:        logger.Named("session-manager").With(zap.String("vm_id", vmID)),
	}
}

// ConnectConsole opens the console stream, first tearing down any
// existing one so at most one stream is ever active.
func (m *Manager) ConnectConsole(ctx context.Context, sink io.Writer) error {
	m.mu.Lock()
	if m.console != nil {
		m.console.close()
		m.console = nil
	}
	sess := newConsoleSession(m.vmID, sink, m.logger)
	m.console = sess
	m.mu.Unlock()

	return sess.connect(ctx, m.consoleDialer)
}

// DisconnectConsole closes the console session. Disconnecting when no
// session exists is a no-op.
func (m *Manager) DisconnectConsole() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.console != nil {
		m.console.close()
		m.console = nil
	}
}

// WriteConsole forwards keystrokes to the guest. Input produced while the
// stream is not ready is dropped; an interactive terminal is not a
// reliable channel.
func (m *Manager) WriteConsole(data []byte) {
	m.mu.Lock()
	sess := m.console
	m.mu.Unlock()
	if sess != nil {
		sess.writeInput(data)
	}
}

// ConsoleStatus returns the console session status, or Idle when no
// session exists.
func (m *Manager) ConsoleStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.console == nil {
		return StatusIdle
	}
	return m.console.currentStatus()
}

// ConnectMetrics subscribes to the metrics feed, replacing any existing
// subscription.
func (m *Manager) ConnectMetrics(ctx context.Context) error {
	m.mu.Lock()
	if m.metrics != nil {
		m.metrics.close()
		m.metrics = nil
	}
	sess := newMetricsSession(m.vmID, m.logger)
	m.metrics = sess
	m.mu.Unlock()

	return sess.connect(ctx, m.metricsDialer)
}

// DisconnectMetrics closes the metrics session. A no-op when already
// disconnected.
func (m *Manager) DisconnectMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.close()
		m.metrics = nil
	}
}

// MetricsStatus returns the metrics session status, or Idle when no
// session exists.
func (m *Manager) MetricsStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metrics == nil {
		return StatusIdle
	}
	return m.metrics.currentStatus()
}

// MetricsHistory returns the retained samples, oldest first.
func (m *Manager) MetricsHistory() []domain.MetricsSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metrics == nil {
		return nil
	}
	return m.metrics.history()
}

// ObserveState reacts to a VM state transition. Leaving Running force
// disconnects the metrics session; entering Running never auto-connects.
func (m *Manager) ObserveState(state domain.VMState) {
	if state == domain.VMStateRunning {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metrics != nil {
		m.logger.Info("VM left running state, disconnecting metrics session",
			zap.String("state", string(state)),
		)
		m.metrics.close()
		m.metrics = nil
	}
}

// Teardown closes both sessions. Called on view teardown; leaves no
// dangling connections behind.
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.console != nil {
		m.console.close()
		m.console = nil
	}
	if m.metrics != nil {
		m.metrics.close()
		m.metrics = nil
	}
	m.logger.Debug("Session manager torn down")
}
