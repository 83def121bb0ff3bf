package api

import "context"

// Health is the backend liveness report.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Ping checks backend reachability. Used as a startup connectivity
// probe; failures are reported, never fatal.
func (c *Client) Ping(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.get(ctx, "health", "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
