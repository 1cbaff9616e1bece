package layout

import "time"

// ISOWeekNumber returns the ISO-8601 week number of the given date: the date
// is shifted to the Thursday of its week, and the week number is the
// Thursday's ordinal day divided into 7-day blocks.
//
// Early-January dates can land in week 52/53 of the prior year and
// late-December dates in week 1 of the next year; that is expected ISO
// behavior, not a defect.
func ISOWeekNumber(d LocalDate) int {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)

	// ISO weekday: Monday=1 .. Sunday=7.
	isoWeekday := int(t.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}

	thursday := t.AddDate(0, 0, 4-isoWeekday)
	return (thursday.YearDay() + 6) / 7
}
