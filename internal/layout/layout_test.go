package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridcal/internal/model"
)

func TestBuildMonth_EmptyEvents(t *testing.T) {
	out := BuildMonth(Input{
		Month:    CalendarMonth{Year: 2024, Month: time.February},
		Settings: DisplaySettings{WeekStartDay: WeekStartSunday},
		Location: time.UTC,
	})

	require.Len(t, out.Weeks, 5)
	require.Len(t, out.Days, 29)
	for _, w := range out.Weeks {
		assert.Empty(t, w.Spans)
		assert.Zero(t, w.HiddenCount)
	}
	for _, d := range out.Days {
		assert.Zero(t, d.Count)
		assert.False(t, d.Expandable)
	}
}

func TestBuildMonth_SpansAndCounts(t *testing.T) {
	out := BuildMonth(Input{
		Events: []model.Event{
			utcEvent(1, "offsite", "2024-01-30T09:00:00Z", "2024-02-02T17:00:00Z"),
		},
		Month:    CalendarMonth{Year: 2024, Month: time.February},
		Settings: DisplaySettings{WeekStartDay: WeekStartSunday, EventStyle: StyleSpanning},
		Location: time.UTC,
	})

	require.Len(t, out.Weeks[0].Spans, 1)
	s := out.Weeks[0].Spans[0]
	assert.Equal(t, 1, s.StartCol)
	assert.Equal(t, 6, s.Span)
	assert.False(t, s.IsStart)
	assert.True(t, s.IsEnd)

	// Only Feb 1 and Feb 2 are in-month days touched by the event.
	assert.Equal(t, 1, out.Days[0].Count)
	assert.Equal(t, 1, out.Days[1].Count)
	assert.Zero(t, out.Days[2].Count)
}

func TestBuildMonth_DailyStyleSuppressesBars(t *testing.T) {
	out := BuildMonth(Input{
		Events: []model.Event{
			utcEvent(1, "offsite", "2024-02-05T09:00:00Z", "2024-02-08T17:00:00Z"),
		},
		Month:    CalendarMonth{Year: 2024, Month: time.February},
		Settings: DisplaySettings{WeekStartDay: WeekStartSunday, EventStyle: StyleDaily},
		Location: time.UTC,
	})

	for _, w := range out.Weeks {
		assert.Empty(t, w.Spans)
	}
	// Day membership stays available for per-day rendering.
	assert.Equal(t, 1, out.Days[4].Count)
	assert.Equal(t, 1, out.Days[7].Count)
}

func TestBuildMonth_HideEndedEvents(t *testing.T) {
	now := time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC)
	events := []model.Event{
		utcEvent(1, "past", "2024-02-01T09:00:00Z", "2024-02-02T10:00:00Z"),
		utcEvent(2, "future", "2024-02-20T09:00:00Z", "2024-02-21T10:00:00Z"),
	}

	in := Input{
		Events:   events,
		Month:    CalendarMonth{Year: 2024, Month: time.February},
		Settings: DisplaySettings{WeekStartDay: WeekStartSunday, HideEndedEvents: true},
		Location: time.UTC,
		Now:      now,
	}
	out := BuildMonth(in)

	assert.Zero(t, out.Days[0].Count, "ended event must be hidden")
	assert.Equal(t, 1, out.Days[19].Count)
	assert.Empty(t, out.Weeks[0].Spans)

	// Both the bars and the badges must see the same filtered set.
	in.Settings.HideEndedEvents = false
	out = BuildMonth(in)
	assert.Equal(t, 1, out.Days[0].Count)
	require.Len(t, out.Weeks[0].Spans, 1)
}

func TestBuildMonth_Overflow(t *testing.T) {
	// Eight events overlapping the same week: five visible, three hidden.
	events := make([]model.Event, 0, 8)
	for i := 0; i < 8; i++ {
		events = append(events,
			utcEvent(int64(i+1), "busy", "2024-02-05T09:00:00Z", "2024-02-09T17:00:00Z"))
	}

	in := Input{
		Events:   events,
		Month:    CalendarMonth{Year: 2024, Month: time.February},
		Settings: DisplaySettings{WeekStartDay: WeekStartSunday},
		Location: time.UTC,
	}
	out := BuildMonth(in)

	week := out.Weeks[1] // Feb 4-10
	assert.Len(t, week.Spans, 5)
	assert.Equal(t, 3, week.HiddenCount)

	// Compact mode raises the cap to six.
	in.Settings.CompactMode = true
	out = BuildMonth(in)
	week = out.Weeks[1]
	assert.Len(t, week.Spans, 6)
	assert.Equal(t, 2, week.HiddenCount)

	// Days with more than the threshold become expandable.
	assert.Equal(t, 8, out.Days[4].Count)
	assert.True(t, out.Days[4].Expandable)
}

func TestBuildMonth_WeekNumbers(t *testing.T) {
	in := Input{
		Month:    CalendarMonth{Year: 2024, Month: time.February},
		Settings: DisplaySettings{WeekStartDay: WeekStartSunday, ShowWeekNumbers: true},
		Location: time.UTC,
	}
	out := BuildMonth(in)

	// First row starts Sun Jan 28, 2024 (ISO week 4).
	assert.Equal(t, 4, out.Weeks[0].WeekNumber)
	assert.Equal(t, 5, out.Weeks[1].WeekNumber)

	in.Settings.ShowWeekNumbers = false
	out = BuildMonth(in)
	assert.Zero(t, out.Weeks[0].WeekNumber)
}

func TestBuildMonth_AdjacentDays(t *testing.T) {
	in := Input{
		Month:    CalendarMonth{Year: 2024, Month: time.February},
		Settings: DisplaySettings{WeekStartDay: WeekStartSunday, ShowAdjacentMonths: true},
		Location: time.UTC,
	}
	out := BuildMonth(in)

	first := out.Weeks[0]
	assert.Equal(t, []int{28, 29, 30, 31, 0, 0, 0}, first.AdjacentDays)
	last := out.Weeks[4]
	assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 2}, last.AdjacentDays)

	// Disabled means absent, not zero-filled; the field drops out of the
	// JSON payload entirely.
	in.Settings.ShowAdjacentMonths = false
	out = BuildMonth(in)
	assert.Nil(t, out.Weeks[0].AdjacentDays)
}

func TestBuildMonth_FarOutMonths(t *testing.T) {
	// No bounds are enforced by the engine; far navigation still yields a
	// structurally valid grid.
	for _, m := range []CalendarMonth{
		{Year: 1582, Month: time.October},
		{Year: 3024, Month: time.June},
	} {
		out := BuildMonth(Input{Month: m, Settings: DisplaySettings{}, Location: time.UTC})
		require.NotEmpty(t, out.Weeks)
		assert.GreaterOrEqual(t, len(out.Weeks), 4)
		assert.LessOrEqual(t, len(out.Weeks), 6)
	}
}

func TestFilterEvents(t *testing.T) {
	now := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	events := []model.Event{
		utcEvent(1, "ended", "2024-02-01T00:00:00Z", "2024-02-02T00:00:00Z"),
		utcEvent(2, "running", "2024-02-09T00:00:00Z", "2024-02-11T00:00:00Z"),
		{ID: 3, Name: "invalid"},
	}

	got := FilterEvents(events, DisplaySettings{}, now)
	require.Len(t, got, 2)

	got = FilterEvents(events, DisplaySettings{HideEndedEvents: true}, now)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}
