package playlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenAt(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPlay(title, artist string, ts time.Time) *Play {
	return &Play{
		Timestamp:  ts,
		Title:      title,
		Artist:     artist,
		Album:      "Album",
		DurationMS: 200_000,
		PlayedMS:   180_000,
		HourOfDay:  ts.Hour(),
		DayOfWeek:  int(ts.Weekday()),
		Season:     "winter",
		Player:     "testplayer",
		IsLocal:    true,
	}
}

func TestAppendAndReadBack(t *testing.T) {
	s := openTestStore(t)

	window := "Music Player"
	screenOn := true
	p := testPlay("Song A", "Artist X", time.Date(2024, 1, 2, 15, 0, 0, 0, time.Local))
	p.SeekCount = 2
	p.IntroSkipped = true
	p.SeekForwardMS = 12_000
	p.SeekBackwardMS = 3_000
	p.ActiveWindow = &window
	p.ScreenOn = &screenOn
	p.Genre = "Jazz"
	p.TrackNumber = 4

	require.NoError(t, s.Append(p))
	assert.NotZero(t, p.ID)

	plays, err := s.Plays(time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, plays, 1)

	got := plays[0]
	assert.Equal(t, "Song A", got.Title)
	assert.Equal(t, "Artist X", got.Artist)
	assert.Equal(t, int64(200_000), got.DurationMS)
	assert.Equal(t, int64(180_000), got.PlayedMS)
	assert.Equal(t, 2, got.SeekCount)
	assert.True(t, got.IntroSkipped)
	assert.Equal(t, int64(12_000), got.SeekForwardMS)
	assert.Equal(t, "Jazz", got.Genre)
	assert.Equal(t, 4, got.TrackNumber)
	require.NotNil(t, got.ActiveWindow)
	assert.Equal(t, "Music Player", *got.ActiveWindow)
	require.NotNil(t, got.ScreenOn)
	assert.True(t, *got.ScreenOn)
	assert.Nil(t, got.OnBattery, "unsampled context stays unknown, not false")
	assert.True(t, got.IsLocal)
}

func TestPlaysRangeAndOrder(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	require.NoError(t, s.Append(testPlay("Second", "A", base.Add(1*time.Hour))))
	require.NoError(t, s.Append(testPlay("First", "A", base)))
	require.NoError(t, s.Append(testPlay("Third", "B", base.Add(2*time.Hour))))

	plays, err := s.Plays(time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, plays, 3)
	assert.Equal(t, "First", plays[0].Title)
	assert.Equal(t, "Second", plays[1].Title)
	assert.Equal(t, "Third", plays[2].Title)

	plays, err = s.Plays(base.Add(30*time.Minute), base.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, "Second", plays[0].Title)
}

func TestPlayDatesDistinct(t *testing.T) {
	s := openTestStore(t)

	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	require.NoError(t, s.Append(testPlay("A", "X", day1)))
	require.NoError(t, s.Append(testPlay("B", "X", day1.Add(5*time.Hour))))
	require.NoError(t, s.Append(testPlay("C", "X", day1.AddDate(0, 0, 2))))

	dates, err := s.PlayDates(time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), dates[0])
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local), dates[1])
}

func TestTotalsAndTopArtists(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2024, 5, 1, 20, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(testPlay("Song", "Frequent", base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, s.Append(testPlay("Other", "Rare", base.Add(10*time.Hour))))

	totals, err := s.Totals(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, totals.PlayCount)
	assert.Equal(t, int64(4*180_000), totals.TotalMS)
	assert.Equal(t, 2, totals.UniqueArtists)

	top, err := s.TopArtists(time.Time{}, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Frequent", top[0].Artist)
	assert.Equal(t, 3, top[0].PlayCount)
}

func TestTotalsEmpty(t *testing.T) {
	s := openTestStore(t)

	totals, err := s.Totals(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, totals.PlayCount)
	assert.Zero(t, totals.TotalMS)

	day, err := s.BiggestDay(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestHourlyAndWeekdayCounts(t *testing.T) {
	s := openTestStore(t)

	p := testPlay("Night", "X", time.Date(2024, 6, 1, 2, 0, 0, 0, time.Local))
	p.HourOfDay = 2
	require.NoError(t, s.Append(p))

	hourly, err := s.HourlyCounts(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, hourly[2])
	_, present := hourly[10]
	assert.False(t, present, "hours without plays are absent")

	weekday, err := s.WeekdayCounts(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, weekday[int(time.Date(2024, 6, 1, 2, 0, 0, 0, time.Local).Weekday())])
}

func TestPendingScrobbleQueue(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddPendingScrobble(PendingScrobble{
		Artist:       "Artist",
		Track:        "Track",
		Album:        "Album",
		DurationSecs: 200,
		Timestamp:    time.Now(),
	}))

	pending, err := s.PendingScrobbles()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Track", pending[0].Track)
	assert.Zero(t, pending[0].Attempts)

	require.NoError(t, s.UpdatePendingScrobbleAttempt(pending[0].ID, "network down"))
	pending, err = s.PendingScrobbles()
	require.NoError(t, err)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "network down", pending[0].LastError)

	require.NoError(t, s.DeletePendingScrobble(pending[0].ID))
	pending, err = s.PendingScrobbles()
	require.NoError(t, err)
	assert.Empty(t, pending)
}
