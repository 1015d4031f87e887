package services

import (
	"fmt"
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func daysFromNow(days int) *time.Time {
	t := testNow.Add(time.Duration(days) * day)
	return &t
}

func intPtr(v int) *int {
	return &v
}

func checksWith(status entities.CheckStatus, n int, at time.Time) []entities.Check {
	checks := make([]entities.Check, n)
	for i := range checks {
		checks[i] = entities.Check{
			ID:        fmt.Sprintf("%s-%d", status, i),
			RuleID:    "r1",
			Status:    status,
			CheckedAt: at,
		}
	}
	return checks
}

func expiringDoc(id string, days int) entities.Document {
	return entities.Document{
		ID:              id,
		Name:            "Passport " + id,
		SubjectName:     "Ada Lovelace",
		ExpiryDate:      daysFromNow(days),
		DaysUntilExpiry: intPtr(days),
	}
}
