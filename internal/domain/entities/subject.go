package entities

import "time"

// Subject is the client or entity that checks, cases and documents pertain to.
type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
