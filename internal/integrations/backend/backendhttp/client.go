package backendhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/BearBump/CargoGate/internal/integrations/backend"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/pkg/errors"
)

const defaultTimeout = 5 * time.Second

// Client — HTTP-коннектор к одному бэкенду. Конфигурируется адресом системы,
// 404 мапится в not_found, любой транспортный сбой или не-2xx — в unavailable.
type Client struct {
	system  string
	baseURL string
	httpc   *http.Client
}

func New(system, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		system:  system,
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) System() string { return c.system }

type shipmentBody struct {
	ID          uint64 `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Status      string `json:"status"`
	System      string `json:"system,omitempty"`
}

type listBody struct {
	Total     int            `json:"total"`
	Shipments []shipmentBody `json:"shipments"`
}

func (c *Client) QueryByID(ctx context.Context, id uint64) backend.QueryResult {
	u, err := c.endpoint(fmt.Sprintf("/shipments/%d", id))
	if err != nil {
		return backend.Unavailable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return backend.Unavailable(errors.Wrap(err, "new request"))
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return backend.Unavailable(errors.Wrap(err, "do request"))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return backend.NotFound()
	case resp.StatusCode/100 != 2:
		return backend.Unavailable(fmt.Errorf("%s backend http %d", c.system, resp.StatusCode))
	}

	var sb shipmentBody
	if err := json.NewDecoder(resp.Body).Decode(&sb); err != nil {
		return backend.Unavailable(errors.Wrap(err, "decode"))
	}
	return backend.Found(c.toRecord(sb))
}

func (c *Client) ListAll(ctx context.Context) ([]*models.ShipmentRecord, error) {
	u, err := c.endpoint("/shipments")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s backend http %d", c.system, resp.StatusCode)
	}

	var lb listBody
	if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	out := make([]*models.ShipmentRecord, 0, len(lb.Shipments))
	for _, sb := range lb.Shipments {
		out = append(out, c.toRecord(sb))
	}
	return out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id uint64, status string) backend.QueryResult {
	u, err := c.endpoint(fmt.Sprintf("/shipments/%d/status", id))
	if err != nil {
		return backend.Unavailable(err)
	}

	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return backend.Unavailable(errors.Wrap(err, "marshal"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return backend.Unavailable(errors.Wrap(err, "new request"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return backend.Unavailable(errors.Wrap(err, "do request"))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return backend.NotFound()
	case resp.StatusCode/100 != 2:
		return backend.Unavailable(fmt.Errorf("%s backend http %d", c.system, resp.StatusCode))
	}

	var sb shipmentBody
	if err := json.NewDecoder(resp.Body).Decode(&sb); err != nil {
		return backend.Unavailable(errors.Wrap(err, "decode"))
	}
	return backend.Found(c.toRecord(sb))
}

func (c *Client) Describe(ctx context.Context) (backend.Info, error) {
	u, err := c.endpoint("/info")
	if err != nil {
		return backend.Info{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return backend.Info{}, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return backend.Info{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return backend.Info{}, fmt.Errorf("%s backend http %d", c.system, resp.StatusCode)
	}

	var info backend.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return backend.Info{}, errors.Wrap(err, "decode")
	}
	return info, nil
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrap(err, "parse base url")
	}
	// JoinPath сохраняет префикс пути из base_url (например /api).
	return u.JoinPath(path).String(), nil
}

func (c *Client) toRecord(sb shipmentBody) *models.ShipmentRecord {
	system := sb.System
	if system == "" {
		// Бэкенды не всегда проставляют свой тег — штампуем сами.
		system = c.system
	}
	return &models.ShipmentRecord{
		ID:          sb.ID,
		Origin:      sb.Origin,
		Destination: sb.Destination,
		Status:      sb.Status,
		System:      system,
	}
}
