package entities

// InsightType classifies an insight.
type InsightType string

const (
	InsightAlert      InsightType = "alert"
	InsightSuggestion InsightType = "suggestion"
	InsightRisk       InsightType = "risk"
)

// IsValid reports whether t is a known insight type.
func (t InsightType) IsValid() bool {
	switch t {
	case InsightAlert, InsightSuggestion, InsightRisk:
		return true
	default:
		return false
	}
}

// InsightSource records where an insight list came from.
type InsightSource string

const (
	SourceRemote    InsightSource = "remote"
	SourceHeuristic InsightSource = "heuristic"
)

// Insight is a derived observation about the aggregate compliance state.
// Insights are recomputed on each load and never persisted.
type Insight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Confidence  int         `json:"confidence"`
	Action      string      `json:"action"`
}
