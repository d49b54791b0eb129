package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOneShot_FiresOnceAtInstant(t *testing.T) {
	at := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	s := newOneShot(at)

	assert.Equal(t, at, s.Next(at.Add(-time.Hour)))
	// Recomputed before firing, e.g. after an engine restart.
	assert.Equal(t, at, s.Next(at.Add(-time.Minute)))
	assert.True(t, s.Next(at).IsZero())
	assert.True(t, s.Next(at.Add(time.Hour)).IsZero())
}

func TestOneShot_PastInstantFiresNow(t *testing.T) {
	at := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	now := at.Add(2 * time.Hour)
	s := newOneShot(at)

	assert.Equal(t, now, s.Next(now))
	assert.True(t, s.Next(now.Add(time.Millisecond)).IsZero())
}
