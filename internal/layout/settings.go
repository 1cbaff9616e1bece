package layout

import "time"

// WeekStartDay selects which weekday occupies the first grid column.
type WeekStartDay string

const (
	WeekStartSunday WeekStartDay = "sunday"
	WeekStartMonday WeekStartDay = "monday"
)

// EventStyle selects how events are materialized in the layout.
type EventStyle string

const (
	// StyleSpanning renders multi-day events as continuous bars per week.
	StyleSpanning EventStyle = "spanning"
	// StyleDaily suppresses bars; consumers render per-day membership only.
	StyleDaily EventStyle = "daily"
)

// DisplaySettings parameterizes a layout computation. It is plain
// configuration with no lifecycle beyond being passed per call.
type DisplaySettings struct {
	WeekStartDay       WeekStartDay
	ShowAdjacentMonths bool
	ShowWeekNumbers    bool
	HideEndedEvents    bool
	EventStyle         EventStyle
	CompactMode        bool
}

// Normalize maps unknown enum values onto their defaults so a layout never
// has to fail on configuration it did not validate itself.
func (s DisplaySettings) Normalize() DisplaySettings {
	if s.WeekStartDay != WeekStartSunday {
		s.WeekStartDay = WeekStartMonday
	}
	if s.EventStyle != StyleDaily {
		s.EventStyle = StyleSpanning
	}
	return s
}

// CalendarMonth identifies the month being displayed. Month uses Go's
// 1-based time.Month convention.
type CalendarMonth struct {
	Year  int
	Month time.Month
}
