// Package renderer is the boundary to the external PDF rendering engine.
// Layout, fonts and rendering fidelity are the engine's concern; this
// service only ships it the configuration and entry and streams back bytes.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pdfgate/internal/model"
)

// Renderer produces the PDF bytes for one (configuration, entry) pair.
type Renderer interface {
	Render(ctx context.Context, cfg *model.DocumentConfiguration, entry *model.Entry) (io.ReadCloser, error)
}

// renderRequest is the wire payload sent to the rendering service.
type renderRequest struct {
	Config *model.DocumentConfiguration `json:"config"`
	Entry  *model.Entry                 `json:"entry"`
}

// HTTPRenderer calls a rendering service over HTTP.
type HTTPRenderer struct {
	endpoint string
	client   *http.Client
}

// NewHTTP creates a renderer client for the given endpoint.
func NewHTTP(endpoint string, timeout time.Duration) *HTTPRenderer {
	return &HTTPRenderer{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

var _ Renderer = (*HTTPRenderer)(nil)

// Render posts the configuration and entry and streams the PDF back.
// The caller owns the returned ReadCloser.
func (r *HTTPRenderer) Render(ctx context.Context, cfg *model.DocumentConfiguration, entry *model.Entry) (io.ReadCloser, error) {
	body, err := json.Marshal(renderRequest{Config: cfg, Entry: entry})
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call renderer: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
