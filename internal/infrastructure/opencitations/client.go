package opencitations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"CitationWatch/internal/config"
	"CitationWatch/internal/domain"
	"CitationWatch/internal/ports"
)

const userAgent = "CitationWatch/1.0"

// Client fetches incoming citation events from the OpenCitations COCI index.
// Calls are spaced out by a rate limiter so a long scan stays polite to the
// public endpoint.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.CitationFeed = (*Client)(nil)

func NewClient(cfg config.OpenCitationsConfig, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	delay := time.Duration(cfg.DelaySeconds * float64(time.Second))
	if delay <= 0 {
		delay = time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.AccessToken,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger:  logger,
	}
}

// Events returns every recorded citation of the given DOI. An error is
// distinct from an empty list: failures must not be read as zero citations.
func (c *Client) Events(ctx context.Context, docID string) ([]domain.CitationEvent, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("citation feed misconfigured: base URL is empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	endpoint := c.baseURL + "/" + url.PathEscape(docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request citations for %s: %w", docID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("citation feed returned %s", resp.Status)
	}

	var items []citationItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode citations for %s: %w", docID, err)
	}

	events := make([]domain.CitationEvent, 0, len(items))
	for _, item := range items {
		events = append(events, domain.CitationEvent{
			Citing:   item.Citing,
			Creation: item.Creation,
		})
	}

	c.debug("citations fetched", "doc_id", docID, "events", len(events))
	return events, nil
}

type citationItem struct {
	Citing   string `json:"citing"`
	Creation string `json:"creation"`
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, args...)
}
