package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowBounds(t *testing.T) {
	ref := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	from, to := Window(ref, 2*time.Hour, 5*time.Minute)
	assert.Equal(t, ref.Add(115*time.Minute), from)
	assert.Equal(t, ref.Add(125*time.Minute), to)

	from, to = Window(ref, time.Hour, 5*time.Minute)
	assert.Equal(t, ref.Add(55*time.Minute), from)
	assert.Equal(t, ref.Add(65*time.Minute), to)
}

func TestWindowContainsTargetSession(t *testing.T) {
	// A session at 10:00 scanned at 08:55 sits inside the 1h +/- 5min window.
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ref := time.Date(2025, 6, 1, 8, 55, 0, 0, time.UTC)

	from, to := Window(ref, time.Hour, 5*time.Minute)
	assert.False(t, start.Before(from))
	assert.False(t, start.After(to))

	// And inside the 2h window when scanned at 08:00.
	from, to = Window(start.Add(-2*time.Hour), 2*time.Hour, 5*time.Minute)
	assert.False(t, start.Before(from))
	assert.False(t, start.After(to))
}

func TestWindowCoversScanCadence(t *testing.T) {
	// Consecutive 5-minute scans with a 5-minute half width leave no gap: a
	// session missed at the tail of one window is caught by the next scan.
	lead, half, interval := 2*time.Hour, 5*time.Minute, 5*time.Minute
	ref := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	_, firstTo := Window(ref, lead, half)
	nextFrom, _ := Window(ref.Add(interval), lead, half)
	assert.False(t, nextFrom.After(firstTo))
}
