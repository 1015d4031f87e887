package ports

import (
	"context"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

// InsightClient asks a remote inference service for insights.
type InsightClient interface {
	// GenerateInsights sends the snapshot and returns the service's insights.
	// Returned insights carry no ID; the caller stamps them.
	GenerateInsights(ctx context.Context, snapshot Snapshot) ([]entities.Insight, error)
}

// Snapshot is one read-only pass over the store. It is also the context
// sent to the insight service.
type Snapshot struct {
	Rules     []entities.Rule     `json:"rules"`
	Checks    []entities.Check    `json:"checks"`
	Cases     []entities.Case     `json:"cases"`
	Documents []entities.Document `json:"documents"`
}
