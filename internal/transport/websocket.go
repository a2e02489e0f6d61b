package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nexusvm/console/internal/domain"
	"github.com/nexusvm/console/internal/session"
)

// Ensure the dialer satisfies the session collaborator interfaces.
var (
	_ session.ConsoleDialer = (*WSDialer)(nil)
	_ session.MetricsDialer = (*WSDialer)(nil)
)

// WSDialer opens console and metrics websocket streams against the
// backend.
type WSDialer struct {
	baseURL string // ws:// or wss://
	logger  *zap.Logger
	dialer  *websocket.Dialer
}

// NewWSDialer creates a websocket dialer for the backend at baseURL.
func NewWSDialer(baseURL string, handshakeTimeout time.Duration, logger *zap.Logger) *WSDialer {
	if handshakeTimeout == 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &WSDialer{
		baseURL: baseURL,
		logger:  logger.Named("ws-dialer"),
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   64 * 1024,
			WriteBufferSize:  64 * 1024,
		},
	}
}

// DialConsole opens the bidirectional console stream for vmID.
func (d *WSDialer) DialConsole(ctx context.Context, vmID string) (session.ConsoleStream, error) {
	url := fmt.Sprintf("%s/v1/vms/%s/console/ws", d.baseURL, vmID)
	conn, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing console: %v", domain.ErrSession, err)
	}
	d.logger.Debug("Console stream opened", zap.String("vm_id", vmID))
	return &consoleConn{conn: conn}, nil
}

// DialMetrics opens the metrics push subscription for vmID.
func (d *WSDialer) DialMetrics(ctx context.Context, vmID string) (session.MetricsStream, error) {
	url := fmt.Sprintf("%s/v1/vms/%s/metrics/ws", d.baseURL, vmID)
	conn, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing metrics: %v", domain.ErrSession, err)
	}
	d.logger.Debug("Metrics stream opened", zap.String("vm_id", vmID))
	return &metricsConn{conn: conn}, nil
}

// consoleConn adapts a websocket connection to the console stream shape.
type consoleConn struct {
	conn *websocket.Conn
}

func (c *consoleConn) ReadFrame() (int, []byte, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return 0, nil, fmt.Errorf("%w: stream closed", domain.ErrSession)
		}
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrSession, err)
	}
	return messageType, data, nil
}

func (c *consoleConn) WriteInput(data []byte) error {
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSession, err)
	}
	return nil
}

func (c *consoleConn) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// metricsConn adapts a websocket connection to the metrics stream shape.
// Each inbound message is one JSON-encoded sample.
type metricsConn struct {
	conn *websocket.Conn
}

func (c *metricsConn) ReadSample() (domain.MetricsSample, error) {
	var sample domain.MetricsSample
	if err := c.conn.ReadJSON(&sample); err != nil {
		return domain.MetricsSample{}, fmt.Errorf("%w: %v", domain.ErrSession, err)
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}
	return sample, nil
}

func (c *metricsConn) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
