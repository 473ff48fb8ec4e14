package archapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Archie-bot-stack/Archie/internal/logger"
	"github.com/Archie-bot-stack/Archie/internal/models"
)

func newStatusBreaker() *gobreaker.CircuitBreaker[*models.ServerStatus] {
	return gobreaker.NewCircuitBreaker[*models.ServerStatus](gobreaker.Settings{
		Name:        "server-status",
		MaxRequests: 1,
		Timeout:     10 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Status returns the public server status, or nil when the status host is
// unreachable, misbehaving or currently short-circuited. An offline server is
// a valid status, not a failure.
func (c *Client) Status(ctx context.Context) *models.ServerStatus {
	st, err := c.status.Execute(func() (*models.ServerStatus, error) {
		body, err := c.getAux(ctx, c.config.StatusURL)
		if err != nil {
			return nil, err
		}
		var out models.ServerStatus
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode status: %w", err)
		}
		return &out, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.Debug("Server status skipped", "error", err)
		} else {
			logger.Warn("Server status lookup failed", "error", err)
		}
		return nil
	}
	return st
}
