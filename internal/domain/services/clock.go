// Package services contains domain business logic.
package services

import "time"

// Clock returns the reference time for a computation. Every derived value
// that depends on "now" reads it through a Clock so tests can pin it.
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return time.Now
	}
	return c
}
