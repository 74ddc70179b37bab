// Package report renders listening statistics for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tom-bleher/music-analytics/internal/analytics"
	"github.com/tom-bleher/music-analytics/internal/playlog"
)

const barWidth = 24

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Renderer formats report sections.
type Renderer struct{}

// New creates a renderer.
func New() *Renderer {
	return &Renderer{}
}

// Title renders the report heading for a named period.
func (r *Renderer) Title(period string) string {
	return titleStyle.Render("Listening report") + dimStyle.Render(" ("+period+")")
}

// Overview renders the totals block.
func (r *Renderer) Overview(t playlog.Totals) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Overview") + "\n")
	if t.PlayCount == 0 {
		b.WriteString(dimStyle.Render("  no plays recorded") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %s plays, %s listening time\n",
		humanize.Comma(int64(t.PlayCount)), FormatDuration(t.TotalMS))
	fmt.Fprintf(&b, "  %s artists, %s albums, %s tracks\n",
		humanize.Comma(int64(t.UniqueArtists)),
		humanize.Comma(int64(t.UniqueAlbums)),
		humanize.Comma(int64(t.UniqueTracks)))
	return b.String()
}

// TopArtists renders the artist leaderboard.
func (r *Renderer) TopArtists(artists []playlog.ArtistCount) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Top artists") + "\n")
	for i, a := range artists {
		fmt.Fprintf(&b, "  %2d. %s %s\n", i+1, a.Artist,
			dimStyle.Render(fmt.Sprintf("(%d plays, %s)", a.PlayCount, FormatDuration(a.TotalMS))))
	}
	return b.String()
}

// TopAlbums renders the album leaderboard.
func (r *Renderer) TopAlbums(albums []playlog.AlbumCount) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Top albums") + "\n")
	for i, a := range albums {
		name := a.Album
		if a.Artist != "" {
			name += " - " + a.Artist
		}
		fmt.Fprintf(&b, "  %2d. %s %s\n", i+1, name,
			dimStyle.Render(fmt.Sprintf("(%d plays)", a.PlayCount)))
	}
	return b.String()
}

// TopTracks renders the track leaderboard.
func (r *Renderer) TopTracks(tracks []playlog.TrackCount) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Top tracks") + "\n")
	for i, t := range tracks {
		name := t.Title
		if t.Artist != "" {
			name += " - " + t.Artist
		}
		fmt.Fprintf(&b, "  %2d. %s %s\n", i+1, name,
			dimStyle.Render(fmt.Sprintf("(%d plays)", t.PlayCount)))
	}
	return b.String()
}

// Hours renders play counts bucketed into day periods plus per-hour bars.
func (r *Renderer) Hours(counts map[int]int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Listening hours") + "\n")

	periods := []struct {
		name string
		from int
		to   int
	}{
		{"Morning (06-11)", 6, 11},
		{"Afternoon (12-17)", 12, 17},
		{"Evening (18-23)", 18, 23},
		{"Night (00-05)", 0, 5},
	}

	max := 0
	totals := make([]int, len(periods))
	for i, p := range periods {
		for h := p.from; h <= p.to; h++ {
			totals[i] += counts[h]
		}
		if totals[i] > max {
			max = totals[i]
		}
	}

	for i, p := range periods {
		fmt.Fprintf(&b, "  %-18s %s %d\n", p.name, Bar(totals[i], max, barWidth), totals[i])
	}
	return b.String()
}

// Weekdays renders a per-weekday bar chart. Keys are 0=Sunday.
func (r *Renderer) Weekdays(counts map[int]int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Days of the week") + "\n")

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	for d := 0; d < 7; d++ {
		fmt.Fprintf(&b, "  %-10s %s %d\n", weekdayNames[d], Bar(counts[d], max, barWidth), counts[d])
	}
	return b.String()
}

// BiggestDay renders the single busiest day, or nothing when absent.
func (r *Renderer) BiggestDay(d *playlog.DayTotal) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s\n  %s: %d plays, %s\n",
		sectionStyle.Render("Biggest day"),
		d.Date.Format("Monday, January 2 2006"),
		d.PlayCount, FormatDuration(d.TotalMS))
}

// Sessions renders listening sessions, most recent first.
func (r *Renderer) Sessions(sessions []analytics.Session) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Sessions") + "\n")
	if len(sessions) == 0 {
		b.WriteString(dimStyle.Render("  no sessions in range") + "\n")
		return b.String()
	}

	ordered := make([]analytics.Session, len(sessions))
	copy(ordered, sessions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.After(ordered[j].Start) })

	for _, s := range ordered {
		fmt.Fprintf(&b, "  %s %s %s\n",
			s.Start.Format("Mon Jan 02 15:04"),
			dimStyle.Render(fmt.Sprintf("(%s)", formatSpan(s.Duration()))),
			fmt.Sprintf("%d tracks, %d artists, %s listened",
				s.Tracks, s.Artists, FormatDuration(s.ListenedMS)))
	}
	return b.String()
}

// Streaks renders the streak summary.
func (r *Renderer) Streaks(report analytics.StreakReport) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Streaks") + "\n")
	if report.DaysWithPlays == 0 {
		b.WriteString(dimStyle.Render("  no plays recorded") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  Longest: %d %s %s\n",
		report.Longest.Days, plural(report.Longest.Days, "day"),
		dimStyle.Render(fmt.Sprintf("(%s to %s)",
			report.Longest.Start.Format("2006-01-02"),
			report.Longest.End.Format("2006-01-02"))))

	if report.HasCurrent {
		fmt.Fprintf(&b, "  Current: %d %s\n",
			report.Current.Days, plural(report.Current.Days, "day"))
	} else {
		b.WriteString("  Current: none\n")
	}
	fmt.Fprintf(&b, "  Days with plays: %d\n", report.DaysWithPlays)
	return b.String()
}

// Bar renders a proportional bar of at most width cells.
func Bar(count, max, width int) string {
	if max <= 0 || count <= 0 {
		return strings.Repeat(" ", width)
	}
	filled := count * width / max
	if filled == 0 {
		filled = 1
	}
	return barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat(" ", width-filled)
}

// FormatDuration renders a millisecond total as hours and minutes.
func FormatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

func formatSpan(d time.Duration) string {
	return FormatDuration(d.Milliseconds())
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
