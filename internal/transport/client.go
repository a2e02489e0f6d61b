// Package transport implements the backend collaborators consumed by the
// console core: the one-shot HTTP action/resource client and the
// websocket dialers for console and metrics streams.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nexusvm/console/internal/domain"
	"github.com/nexusvm/console/internal/services/resource"
)

// Ensure the client can back the resource workflow directly.
var _ resource.Repository = (*Client)(nil)

// actionTypes maps lifecycle actions onto the backend's wire names.
var actionTypes = map[domain.LifecycleAction]string{
	domain.ActionStart:        "InstanceStart",
	domain.ActionStop:         "InstanceStop",
	domain.ActionPause:        "InstancePause",
	domain.ActionResume:       "InstanceResume",
	domain.ActionCtrlAltDel:   "SendCtrlAltDel",
	domain.ActionFlushMetrics: "FlushMetrics",
}

// Client is the HTTP client for one-shot backend calls. Timeouts are this
// layer's responsibility; a timed-out request surfaces as ErrBackend like
// any other server failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("backend-client"),
	}
}

// SendAction requests a lifecycle action. The response is only an ack:
// the resulting state is observed via a follow-up VM read, never assumed.
func (c *Client) SendAction(ctx context.Context, vmID string, action domain.LifecycleAction) error {
	wire, ok := actionTypes[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", domain.ErrValidationFailed, action)
	}
	path := fmt.Sprintf("/v1/vms/%s/actions", vmID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"action_type": wire}, nil)
}

// PutNic stores a network interface on the backend. The hypervisor picks
// it up at the next VM start.
func (c *Client) PutNic(ctx context.Context, vmID string, nic domain.Nic) error {
	path := fmt.Sprintf("/v1/vms/%s/network-interfaces/%s", vmID, nic.IfaceID)
	return c.do(ctx, http.MethodPut, path, nic, nil)
}

// DeleteNic removes a network interface record.
func (c *Client) DeleteNic(ctx context.Context, vmID, ifaceID string) error {
	path := fmt.Sprintf("/v1/vms/%s/network-interfaces/%s", vmID, ifaceID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// PutDrive stores a drive on the backend.
func (c *Client) PutDrive(ctx context.Context, vmID string, drive domain.Drive) error {
	path := fmt.Sprintf("/v1/vms/%s/drives/%s", vmID, drive.DriveID)
	return c.do(ctx, http.MethodPut, path, drive, nil)
}

// DeleteDrive removes a drive record.
func (c *Client) DeleteDrive(ctx context.Context, vmID, driveID string) error {
	path := fmt.Sprintf("/v1/vms/%s/drives/%s", vmID, driveID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// GetVM reads the VM's current state from the backend.
func (c *Client) GetVM(ctx context.Context, vmID string) (*domain.VM, error) {
	var vm domain.VM
	if err := c.do(ctx, http.MethodGet, "/v1/vms/"+vmID, nil, &vm); err != nil {
		return nil, err
	}
	vm.State = domain.NormalizeState(string(vm.State))
	return &vm, nil
}

// do executes one JSON request and maps the response onto the domain
// error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrConflict
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(resp.Body)
		c.logger.Warn("Backend returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d: %s", domain.ErrBackend, resp.StatusCode, bytes.TrimSpace(data))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decoding response: %v", domain.ErrBackend, err)
		}
	}
	return nil
}
