package domain

import "time"

// Job is a persisted one-shot trigger for a delivery's pickup time.
type Job struct {
	Key        string
	DeliveryID int64
	FireAt     time.Time
	FiredAt    *time.Time
	CreatedAt  time.Time
}
