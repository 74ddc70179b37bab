// Package probe samples the listening environment at the moment a play is
// finalized. Every probe is best-effort: a sampler never errors and never
// blocks for long, it just leaves fields unknown.
package probe

import "time"

// Context is an environment snapshot. Pointer fields are nil when the
// probe could not answer in time.
type Context struct {
	HourOfDay    int
	DayOfWeek    int // 0=Sunday .. 6=Saturday
	IsWeekend    bool
	Season       string // "spring", "summer", "fall", "winter"
	ActiveWindow *string
	ScreenOn     *bool
	OnBattery    *bool
}

// Sampler takes environment snapshots.
type Sampler interface {
	Sample() Context
}

// TimeContext fills the fields derivable from a wall-clock instant.
func TimeContext(now time.Time) Context {
	wd := int(now.Weekday())
	return Context{
		HourOfDay: now.Hour(),
		DayOfWeek: wd,
		IsWeekend: wd == 0 || wd == 6,
		Season:    Season(now),
	}
}

// Season returns the meteorological season for a date (Northern Hemisphere).
func Season(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "fall"
	default:
		return "winter"
	}
}

// Fixed is a Sampler returning a canned context. Used in tests and as a
// fallback when system probes are unavailable.
type Fixed struct {
	Ctx Context
}

func (f Fixed) Sample() Context {
	return f.Ctx
}
