// Package layout implements the calendar span-layout engine: given a month,
// a set of UTC events, an effective timezone and display settings, it
// computes the week/day grid, the per-week spanning-bar placements with
// continuation flags, per-day membership counts and ISO week numbers.
//
// Every entry point is a deterministic, synchronous transformation of its
// explicit inputs; there is no shared mutable state and no I/O, which is
// what makes the memoization in cache.go safe.
package layout

import (
	"time"

	"gridcal/internal/model"
)

// Input is the full parameter set of one month computation. Passing it
// explicitly (instead of ambient state) keys memoization and keeps results
// reproducible.
type Input struct {
	// Events is read-only to the engine; entries with inverted or zero
	// instants are skipped, not corrected.
	Events []model.Event

	Month    CalendarMonth
	Settings DisplaySettings

	// Location is the effective timezone for day boundaries; nil means the
	// host clock.
	Location *time.Location

	// Now is the reference instant for HideEndedEvents. Injected so results
	// do not depend on the wall clock.
	Now time.Time
}

// WeekRow is one week of the computed month.
type WeekRow struct {
	WeekIndex int `json:"week_index"`

	// Days holds the in-month day number per column, 0 for cells outside
	// the month. AdjacentDays carries the neighboring month's day numbers
	// for those cells when ShowAdjacentMonths is set and is nil otherwise;
	// it is cosmetic and never carries event data.
	Days         [7]int `json:"days"`
	AdjacentDays []int  `json:"adjacent_days,omitempty"`

	// Spans is the visible bar list in presentation order; HiddenCount is
	// the "+N more" count after truncation.
	Spans       []SpanningEvent `json:"spans"`
	HiddenCount int             `json:"hidden_count"`

	// WeekNumber is the ISO week number of the row's first column, 0 when
	// week numbers are disabled.
	WeekNumber int `json:"week_number,omitempty"`
}

// DayInfo is the per-day badge data for one in-month day.
type DayInfo struct {
	Day        int  `json:"day"`
	Count      int  `json:"count"`
	Expandable bool `json:"expandable"`
}

// MonthLayout is the complete computed result for one month. It is created
// fresh per input tuple and never mutated afterwards.
type MonthLayout struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Timezone string     `json:"timezone"`

	Weeks []WeekRow `json:"weeks"`

	// Days is indexed 0..DaysInMonth-1 for days 1..DaysInMonth.
	Days []DayInfo `json:"days"`
}

// FilterEvents applies the upstream event filter shared by the span
// allocator and the membership index: invalid events always go, and with
// HideEndedEvents set, events ended strictly before now go too. Filtering
// once keeps both consumers consistent.
func FilterEvents(events []model.Event, s DisplaySettings, now time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !ev.Valid() {
			continue
		}
		if s.HideEndedEvents && ev.EndedBefore(now) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// BuildMonth computes the full layout for one month.
func BuildMonth(in Input) *MonthLayout {
	settings := in.Settings.Normalize()
	p := ProjectorAt(in.Location)

	grid := BuildGrid(in.Month, settings.WeekStartDay)

	events := FilterEvents(in.Events, settings, in.Now)
	ranges := projectEvents(events, p)
	index := NewMembershipIndex(events, p)

	maxVisible := MaxVisible(settings)

	out := &MonthLayout{
		Year:     grid.Year,
		Month:    grid.Month,
		Timezone: p.Location().String(),
		Weeks:    make([]WeekRow, 0, grid.Weeks),
		Days:     make([]DayInfo, grid.DaysInMonth),
	}

	for week := 0; week < grid.Weeks; week++ {
		row := WeekRow{
			WeekIndex: week,
			Days:      grid.Week(week),
			Spans:     []SpanningEvent{},
		}

		if settings.ShowAdjacentMonths {
			row.AdjacentDays = make([]int, 7)
			for col := 0; col < 7; col++ {
				row.AdjacentDays[col] = grid.adjacentDay(week*7 + col)
			}
		}

		if settings.EventStyle == StyleSpanning {
			truncated := Truncate(allocateWeek(grid, week, ranges), maxVisible)
			row.Spans = truncated.Visible
			row.HiddenCount = truncated.HiddenCount
		}

		if settings.ShowWeekNumbers {
			row.WeekNumber = ISOWeekNumber(grid.weekStartDate(week))
		}

		out.Weeks = append(out.Weeks, row)
	}

	for day := 1; day <= grid.DaysInMonth; day++ {
		count := index.CountOn(LocalDate{Year: grid.Year, Month: grid.Month, Day: day})
		out.Days[day-1] = DayInfo{
			Day:        day,
			Count:      count,
			Expandable: count > ExpandThreshold,
		}
	}

	return out
}
