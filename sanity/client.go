// Package sanity reads portfolio content from a Sanity dataset over the HTTP
// query API and maps it onto the content descriptors.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const placeholderProject = "placeholder"

var (
	// ErrNotConfigured is returned when no project id is set.
	ErrNotConfigured = errors.New("sanity: not configured")
	// ErrNoResult is returned when a query result is null.
	ErrNoResult = errors.New("sanity: no result")
)

// Config identifies the dataset to query.
type Config struct {
	ProjectID  string
	Dataset    string // default "production"
	APIVersion string // default "2024-01-01"
	Token      string // optional read token
	UseCDN     bool

	// BaseURL overrides the API host, e.g. for tests.
	BaseURL string
	// ImageBaseURL overrides the image CDN host.
	ImageBaseURL string
	Timeout      time.Duration
}

func (c *Config) setDefaults() {
	if c.Dataset == "" {
		c.Dataset = "production"
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-01-01"
	}
	c.APIVersion = strings.TrimPrefix(c.APIVersion, "v")
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = "https://cdn.sanity.io"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Configured reports whether a real project id is set.
func (c Config) Configured() bool {
	return c.ProjectID != "" && c.ProjectID != placeholderProject
}

func (c Config) apiBase() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	host := "api.sanity.io"
	// the CDN does not serve authenticated requests
	if c.UseCDN && c.Token == "" {
		host = "apicdn.sanity.io"
	}
	return "https://" + c.ProjectID + "." + host
}

// Client issues GROQ queries. Calls go through a circuit breaker so an
// unreachable API fails fast instead of stalling every page render.
type Client struct {
	cfg  Config
	http *http.Client
	cb   *gobreaker.CircuitBreaker
	log  *zap.Logger
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("sanity")
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sanity",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		cb:   cb,
		log:  log,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Configured reports whether queries will reach the API.
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// BreakerState returns the circuit breaker state as text.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Query runs a GROQ query and decodes its result into out. Each params entry
// is sent JSON-encoded as "$name". A null result yields ErrNoResult.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	q := url.Values{}
	q.Set("query", query)
	for k, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("sanity: encode param %s: %w", k, err)
		}
		q.Set("$"+k, string(b))
	}
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s",
		c.cfg.apiBase(), c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset), q.Encode())

	raw, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		return err
	}
	result := raw.(json.RawMessage)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return ErrNoResult
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("sanity: decode result: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sanity: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sanity: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sanity: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("sanity: decode response: %w", err)
	}
	return qr.Result, nil
}

// ImageURL builds a CDN URL for an asset reference in this client's dataset.
func (c *Client) ImageURL(ref string, width, height int) string {
	return imageURL(c.cfg.ImageBaseURL, c.cfg.ProjectID, c.cfg.Dataset, ref, width, height)
}
