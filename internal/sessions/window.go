package sessions

import "time"

// Window returns the scan range for sessions whose start falls lead before
// ref, within +/- halfWidth. The scheduler runs every few minutes, so the
// full window must be at least as wide as the scan interval or sessions can
// slip between scans (config.SchedulerConfig.Validate enforces this).
func Window(ref time.Time, lead, halfWidth time.Duration) (from, to time.Time) {
	center := ref.Add(lead)
	return center.Add(-halfWidth), center.Add(halfWidth)
}
