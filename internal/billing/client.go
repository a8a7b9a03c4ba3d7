// Package billing fetches rendered invoice PDFs from the third-party billing
// API. The API is read-only and exposes no invoice listing; documents can
// only be probed by (series, number).
package billing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"certikid/internal/config"
	"certikid/internal/domain"
	"certikid/internal/port"
)

// Client implements port.InvoiceSource against the billing API's invoice-PDF
// endpoint. Every fetch passes through the shared rate gate first; the gate
// must be the process-wide single instance so manual generation and discovery
// runs share one minimum delay.
type Client struct {
	baseURL string
	token   string
	gate    *rate.Limiter
	client  *http.Client
}

// NewClient creates a billing API client. gate is the shared minimum-delay
// limiter applied before every outbound fetch.
func NewClient(cfg *config.BillingConfig, gate *rate.Limiter) port.InvoiceSource {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		gate:    gate,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewGate builds the shared fetch gate: at most one request per interval.
func NewGate(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// Fetch downloads the rendered PDF for one invoice. A 404, or a body that is
// not a PDF (the API answers unissued numbers with an HTML error page),
// yields domain.ErrInvoiceNotFound; other non-200 statuses are transient.
func (c *Client) Fetch(ctx context.Context, series, number string) ([]byte, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("billing.Client: rate gate: %w", err)
	}

	endpoint := fmt.Sprintf("%s/docs/invoice/pdf?seriesName=%s&number=%s",
		c.baseURL, url.QueryEscape(series), url.QueryEscape(number))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("billing.Client: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing.Client: calling billing API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("billing.Client: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", domain.ErrInvoiceNotFound, series, number)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("billing.Client: billing API error (status %d): %s",
			resp.StatusCode, truncate(string(body), 200))
	case !isPDF(body):
		return nil, fmt.Errorf("%w: %s %s: response is not a PDF", domain.ErrInvoiceNotFound, series, number)
	}

	return body, nil
}

func isPDF(body []byte) bool {
	return len(body) >= 5 && string(body[:5]) == "%PDF-"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
