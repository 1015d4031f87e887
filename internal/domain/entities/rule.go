// Package entities contains core domain data structures.
package entities

import "time"

// RuleCategory groups rules for presentation and reporting.
type RuleCategory string

const (
	CategoryIdentityVerification RuleCategory = "identity-verification"
	CategoryDocumentation        RuleCategory = "documentation"
	CategorySuitability          RuleCategory = "suitability"
	CategoryTrading              RuleCategory = "trading"
	CategoryPortfolioRisk        RuleCategory = "portfolio-risk"
)

// RuleCategories is the fixed category order used when grouping rules.
var RuleCategories = []RuleCategory{
	CategoryIdentityVerification,
	CategoryDocumentation,
	CategorySuitability,
	CategoryTrading,
	CategoryPortfolioRisk,
}

// IsValid reports whether c is one of the known categories.
func (c RuleCategory) IsValid() bool {
	for _, known := range RuleCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is the ordered importance of a rule.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the sort weight of the severity (higher is more severe).
// Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// Rule is a named compliance policy evaluated by checks.
type Rule struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    RuleCategory `json:"category"`
	Severity    Severity     `json:"severity"`
	Enabled     bool         `json:"enabled"`
	Revision    int          `json:"revision"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
