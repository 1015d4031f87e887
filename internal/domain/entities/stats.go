package entities

// DashboardStats is the headline summary shown on the compliance dashboard.
type DashboardStats struct {
	OverallScore int `json:"overall_score"`
	Trend        int `json:"trend"`
	TotalRules   int `json:"total_rules"`
	PassedChecks int `json:"passed_checks"`
	FailedChecks int `json:"failed_checks"`
	PendingCases int `json:"pending_cases"`
	ExpiringDocs int `json:"expiring_docs"`
}
