package services

import (
	"time"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

const day = 24 * time.Hour

// DaysUntilExpiry returns ceil((expiry - now) / 24h).
func DaysUntilExpiry(expiry, now time.Time) int {
	d := expiry.Sub(now)
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}

// ApplyExpiry returns doc with DaysUntilExpiry derived from now.
// Documents without an expiry date come back with DaysUntilExpiry unset.
func ApplyExpiry(doc entities.Document, now time.Time) entities.Document {
	if doc.ExpiryDate == nil || doc.ExpiryDate.IsZero() {
		doc.DaysUntilExpiry = nil
		return doc
	}
	days := DaysUntilExpiry(*doc.ExpiryDate, now)
	doc.DaysUntilExpiry = &days
	return doc
}

// ApplyExpiryAll runs ApplyExpiry over every document.
func ApplyExpiryAll(docs []entities.Document, now time.Time) []entities.Document {
	result := make([]entities.Document, len(docs))
	for i := range docs {
		result[i] = ApplyExpiry(docs[i], now)
	}
	return result
}

// expiresWithin reports whether the document has a known expiry between
// 0 and maxDays days away, inclusive.
func expiresWithin(doc *entities.Document, maxDays int) bool {
	if doc.DaysUntilExpiry == nil {
		return false
	}
	days := *doc.DaysUntilExpiry
	return days >= 0 && days <= maxDays
}
