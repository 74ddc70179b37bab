package analytics

import "time"

// StreakReport summarizes consecutive-day listening runs.
type StreakReport struct {
	Runs          []Streak // every run, ascending
	Longest       Streak
	Current       Streak
	HasCurrent    bool
	DaysWithPlays int
}

// Streak is a run of consecutive calendar dates with at least one play.
type Streak struct {
	Start time.Time
	End   time.Time
	Days  int
}

// Streaks computes listening streaks from the distinct calendar dates
// bearing plays, ascending. The current streak is alive only when its last
// day is today or yesterday relative to the reference date; ties on length
// keep the earliest streak.
func Streaks(dates []time.Time, reference time.Time) StreakReport {
	report := StreakReport{DaysWithPlays: len(dates)}
	if len(dates) == 0 {
		return report
	}

	run := Streak{Start: midnight(dates[0]), End: midnight(dates[0]), Days: 1}
	for _, d := range dates[1:] {
		day := midnight(d)
		if day.Equal(run.End.AddDate(0, 0, 1)) {
			run.End = day
			run.Days++
			continue
		}
		report.Runs = append(report.Runs, run)
		run = Streak{Start: day, End: day, Days: 1}
	}
	report.Runs = append(report.Runs, run)

	for _, r := range report.Runs {
		if r.Days > report.Longest.Days {
			report.Longest = r
		}
	}

	// The final run is current only if it reaches into yesterday or today
	last := report.Runs[len(report.Runs)-1]
	if !last.End.Before(midnight(reference).AddDate(0, 0, -1)) {
		report.Current = last
		report.HasCurrent = true
	}

	return report
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
