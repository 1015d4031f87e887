package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// InsightClient is a mock implementation of ports.InsightClient.
type InsightClient struct {
	mu sync.Mutex

	// GenerateInsights return values
	Insights []entities.Insight
	Err      error

	// Calls records every snapshot received.
	Calls []ports.Snapshot
}

// GenerateInsights returns the configured insights or error.
func (m *InsightClient) GenerateInsights(_ context.Context, snapshot ports.Snapshot) ([]entities.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, snapshot)
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]entities.Insight(nil), m.Insights...), nil
}

// CallCount returns how many times GenerateInsights was called.
func (m *InsightClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
