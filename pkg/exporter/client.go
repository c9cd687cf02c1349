package exporter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/goccy/go-json"
	prom "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/voluzi/tegrastats-exporter/pkg/aggregator"
)

var (
	httpClient = &http.Client{
		Timeout: 30 * time.Second,
	}
)

// Client talks to a running exporter.
type Client struct {
	url string
}

// NewClient creates a client for the exporter listening on host:port.
func NewClient(host string, port int) *Client {
	return &Client{url: fmt.Sprintf("http://%s:%d", host, port)}
}

// NewClientForURL creates a client for an exporter base URL such as
// http://jetson-01:8000.
func NewClientForURL(url string) *Client {
	return &Client{url: strings.TrimSuffix(url, "/")}
}

func (c *Client) get(ctx context.Context, endpoint string, validStatuses ...int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	for _, status := range validStatuses {
		if resp.StatusCode == status {
			return resp, nil
		}
	}

	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return nil, errors.Errorf("GET %s: %s: %s", endpoint, resp.Status, strings.TrimSpace(string(b)))
}

// IsReady reports whether the exporter has published at least one window.
func (c *Client) IsReady(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "/ready", http.StatusOK, http.StatusExpectationFailed)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// GetSnapshot returns the last flushed window, or nil if nothing was flushed
// yet.
func (c *Client) GetSnapshot(ctx context.Context) (*aggregator.Snapshot, error) {
	resp, err := c.get(ctx, "/snapshot", http.StatusOK, http.StatusNoContent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var snapshot aggregator.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &snapshot, nil
}

// GetMetricFamilies scrapes /metrics and parses the text exposition format.
func (c *Client) GetMetricFamilies(ctx context.Context) (map[string]*prom.MetricFamily, error) {
	resp, err := c.get(ctx, "/metrics", http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	parser := expfmt.TextParser{}
	fams, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse metrics")
	}
	return fams, nil
}
