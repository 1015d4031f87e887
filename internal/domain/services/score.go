package services

import (
	"math"
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

const (
	// ExpiringSoonDays is the window counted as "expiring" on the dashboard.
	ExpiringSoonDays = 30
	// TrendWindow splits checks into recent and older halves for the trend.
	TrendWindow = 30 * day
)

// CountChecks partitions checks into passed and failed.
// Warnings count as failures; needs-review checks are ignored.
func CountChecks(checks []entities.Check) (passed, failed int) {
	for i := range checks {
		switch checks[i].Status {
		case entities.CheckPass:
			passed++
		case entities.CheckFail, entities.CheckWarning:
			failed++
		}
	}
	return passed, failed
}

// ScoreOf returns round(100 * passed / (passed + failed)), or 0 with no
// scored checks.
func ScoreOf(passed, failed int) int {
	total := passed + failed
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(passed) / float64(total)))
}

// AggregateScore reduces a snapshot into the dashboard stats.
// Documents must already carry DaysUntilExpiry.
func AggregateScore(snap ports.Snapshot, now time.Time) entities.DashboardStats {
	passed, failed := CountChecks(snap.Checks)

	stats := entities.DashboardStats{
		OverallScore: ScoreOf(passed, failed),
		Trend:        Trend(snap.Checks, now),
		TotalRules:   len(snap.Rules),
		PassedChecks: passed,
		FailedChecks: failed,
	}

	for i := range snap.Cases {
		if snap.Cases[i].Status.IsPending() {
			stats.PendingCases++
		}
	}

	for i := range snap.Documents {
		if expiresWithin(&snap.Documents[i], ExpiringSoonDays) {
			stats.ExpiringDocs++
		}
	}

	return stats
}

// Trend compares the score of checks from the last TrendWindow with the
// score of older checks, in percentage points. It is 0 when either side has
// nothing to score.
func Trend(checks []entities.Check, now time.Time) int {
	cutoff := now.Add(-TrendWindow)

	var recent, older []entities.Check
	for i := range checks {
		if checks[i].CheckedAt.Before(cutoff) {
			older = append(older, checks[i])
		} else {
			recent = append(recent, checks[i])
		}
	}

	rp, rf := CountChecks(recent)
	op, of := CountChecks(older)
	if rp+rf == 0 || op+of == 0 {
		return 0
	}
	return ScoreOf(rp, rf) - ScoreOf(op, of)
}
