package scheduler

import "time"

// oneShot is a cron.Schedule that activates once at a fixed instant. A
// fire time already in the past activates immediately.
type oneShot struct {
	at   time.Time
	next time.Time
}

func newOneShot(at time.Time) *oneShot {
	return &oneShot{at: at}
}

// Next is called by the cron run loop only, so no locking is needed.
func (s *oneShot) Next(t time.Time) time.Time {
	if !s.next.IsZero() && !t.Before(s.next) {
		return time.Time{}
	}
	if t.Before(s.at) {
		s.next = s.at
	} else {
		s.next = t
	}
	return s.next
}
