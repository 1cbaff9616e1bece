package layout

import "time"

// Grid is the week/day skeleton of one displayed month, independent of
// events. Cells are row-major, 7 per week; a 0 cell lies outside the month.
type Grid struct {
	Year      int
	Month     time.Month
	WeekStart WeekStartDay

	// Days holds 7*Weeks cells; cell i carries the in-month day number or 0.
	Days  []int
	Weeks int

	// FirstDayOffset is the column (0-based) of day 1 under the week-start
	// convention. DaysInMonth is the month's last day number.
	FirstDayOffset int
	DaysInMonth    int
}

// daysInMonth returns the number of days in the given month. Day 0 of the
// next month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// columnOf maps a plain weekday (0=Sunday) onto a grid column under the
// week-start convention. Monday-first rotates Monday into column 0.
func columnOf(weekday time.Weekday, start WeekStartDay) int {
	d := int(weekday)
	if start == WeekStartMonday {
		return (d + 6) % 7
	}
	return d
}

// BuildGrid computes the month skeleton. Months always yield 4, 5 or 6 week
// rows depending on length and on which column day 1 lands.
func BuildGrid(m CalendarMonth, start WeekStartDay) Grid {
	total := daysInMonth(m.Year, m.Month)
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	offset := columnOf(first.Weekday(), start)

	cells := offset + total
	weeks := (cells + 6) / 7

	days := make([]int, weeks*7)
	for i := range days {
		if i >= offset && i < offset+total {
			days[i] = i - offset + 1
		}
	}

	return Grid{
		Year:           m.Year,
		Month:          m.Month,
		WeekStart:      start,
		Days:           days,
		Weeks:          weeks,
		FirstDayOffset: offset,
		DaysInMonth:    total,
	}
}

// Week returns the 7 cells of the given week row.
func (g Grid) Week(week int) [7]int {
	var out [7]int
	copy(out[:], g.Days[week*7:week*7+7])
	return out
}

// occupiedCols returns the 1-based first and last non-empty columns of a
// week row. ok is false for a row with no in-month days; BuildGrid never
// produces such a row.
func (g Grid) occupiedCols(week int) (first, last int, ok bool) {
	for col := 0; col < 7; col++ {
		if g.Days[week*7+col] != 0 {
			if first == 0 {
				first = col + 1
			}
			last = col + 1
		}
	}
	return first, last, first != 0
}

// weekStartDate returns the true calendar date of the week row's first
// column, which may fall in the previous month for the first row.
func (g Grid) weekStartDate(week int) LocalDate {
	t := time.Date(g.Year, g.Month, 1-g.FirstDayOffset+week*7, 0, 0, 0, 0, time.UTC)
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// adjacentDay returns the neighboring month's day number for an out-of-month
// cell, for cosmetic rendering when adjacent months are shown.
func (g Grid) adjacentDay(cell int) int {
	if g.Days[cell] != 0 {
		return 0
	}
	if cell < g.FirstDayOffset {
		prev := daysInMonth(g.Year, g.Month-1)
		return prev - g.FirstDayOffset + cell + 1
	}
	return cell - g.FirstDayOffset - g.DaysInMonth + 1
}
