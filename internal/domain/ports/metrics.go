package ports

import (
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

// MetricsRecorder receives engine measurements. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	RecordLoad(tenant string, duration time.Duration, stats entities.DashboardStats)
	RecordLoadError(tenant, entity string)
	RecordInsights(tenant string, source entities.InsightSource)
	RecordWrite(tenant, op string, err error)
}
