package llm

import (
	"context"
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// timeoutClient bounds every remote call with a deadline.
type timeoutClient struct {
	next    ports.InsightClient
	timeout time.Duration
}

// WithTimeout wraps client so each call gets at most timeout. A zero or
// negative timeout returns client unchanged.
func WithTimeout(client ports.InsightClient, timeout time.Duration) ports.InsightClient {
	if timeout <= 0 {
		return client
	}
	return &timeoutClient{next: client, timeout: timeout}
}

func (c *timeoutClient) GenerateInsights(ctx context.Context, snapshot ports.Snapshot) ([]entities.Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.GenerateInsights(ctx, snapshot)
}
