package mocks

import (
	"sync"
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

// Metrics is a mock implementation of ports.MetricsRecorder that counts calls.
type Metrics struct {
	mu sync.Mutex

	Loads          int
	LastStats      entities.DashboardStats
	LoadErrors     map[string]int
	InsightSources []entities.InsightSource
	Writes         map[string]int
	FailedWrites   map[string]int
}

// NewMetrics creates an empty mock recorder.
func NewMetrics() *Metrics {
	return &Metrics{
		LoadErrors:   make(map[string]int),
		Writes:       make(map[string]int),
		FailedWrites: make(map[string]int),
	}
}

// RecordLoad counts a completed load.
func (m *Metrics) RecordLoad(_ string, _ time.Duration, stats entities.DashboardStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	m.LastStats = stats
}

// RecordLoadError counts a failed entity read.
func (m *Metrics) RecordLoadError(_, entity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadErrors[entity]++
}

// RecordInsights records which source produced an insight list.
func (m *Metrics) RecordInsights(_ string, source entities.InsightSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsightSources = append(m.InsightSources, source)
}

// RecordWrite counts a store write.
func (m *Metrics) RecordWrite(_, op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.FailedWrites[op]++
		return
	}
	m.Writes[op]++
}

// Sources returns a copy of the recorded insight sources.
func (m *Metrics) Sources() []entities.InsightSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.InsightSource(nil), m.InsightSources...)
}
