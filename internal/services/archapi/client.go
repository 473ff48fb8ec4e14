// Package archapi is the client for the ArchMC statistics API and the
// unauthenticated lookups that go with it (player avatars, server status).
package archapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/metrics"
	"github.com/Archie-bot-stack/Archie/internal/models"
	"github.com/Archie-bot-stack/Archie/internal/version"
)

const maxBodyBytes = 8 << 20

// Config holds configuration for the API client.
type Config struct {
	BaseURL       string
	APIKey        string
	StatusURL     string
	AvatarBaseURL string
	RateLimit     int
	RateWindow    time.Duration
	Timeout       time.Duration
	AuxTimeout    time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "https://api.arch.mc",
		StatusURL:     "https://api.mcsrvstat.us/3/play.arch.mc",
		AvatarBaseURL: "https://mc-heads.net/avatar",
		RateLimit:     90,
		RateWindow:    60 * time.Second,
		Timeout:       30 * time.Second,
		AuxTimeout:    5 * time.Second,
	}
}

// Client talks to the ArchMC API. API calls share one sliding-window budget;
// avatar and status lookups use a separate short-timeout client and are not
// counted against it.
type Client struct {
	config  Config
	http    *http.Client
	aux     *http.Client
	limiter *SlidingWindow
	status  *gobreaker.CircuitBreaker[*models.ServerStatus]
}

// New creates a new API client.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.StatusURL == "" {
		cfg.StatusURL = def.StatusURL
	}
	if cfg.AvatarBaseURL == "" {
		cfg.AvatarBaseURL = def.AvatarBaseURL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = def.RateWindow
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.AuxTimeout <= 0 {
		cfg.AuxTimeout = def.AuxTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.AvatarBaseURL = strings.TrimRight(cfg.AvatarBaseURL, "/")

	return &Client{
		config:  cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		aux:     &http.Client{Timeout: cfg.AuxTimeout},
		limiter: NewSlidingWindow(cfg.RateLimit, cfg.RateWindow),
		status:  newStatusBreaker(),
	}
}

// Remaining reports the unused request budget in the current window.
func (c *Client) Remaining() int {
	return c.limiter.Remaining()
}

// Fetch GETs path from the API and decodes the JSON body into out. It
// reports false when the budget is spent or the request fails for any reason.
func (c *Client) Fetch(ctx context.Context, path string, out any) bool {
	if err := c.limiter.Reserve(); err != nil {
		metrics.RecordAPIRequest(metrics.OutcomeRefused)
		logger.Warn("API request refused", "path", path, "error", err)
		return false
	}

	if err := c.get(ctx, path, out); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			metrics.RecordAPIRequest(metrics.OutcomeStatus)
			logger.Debug("API request returned non-200", "path", path, "status", se.code)
		} else {
			metrics.RecordAPIRequest(metrics.OutcomeError)
			logger.Warn("API request failed", "path", path, "error", err)
		}
		return false
	}

	metrics.RecordAPIRequest(metrics.OutcomeOK)
	return true
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getAux performs an unauthenticated GET on the short-timeout client and
// returns the body of a 200 response.
func (c *Client) getAux(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.aux.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
