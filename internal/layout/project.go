package layout

import (
	"time"
)

// LocalDate is a calendar date (no time-of-day) in the effective timezone.
// All day-boundary decisions in this package compare LocalDates, never raw
// instants, so that events near midnight land on the correct cell in
// non-UTC timezones.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ordinal folds the date into a single comparable integer (year*10000 +
// month*100 + day). Dates are always well-formed here, so lexicographic
// field order and numeric order coincide.
func (d LocalDate) ordinal() int {
	return d.Year*10000 + int(d.Month)*100 + d.Day
}

func (d LocalDate) Before(o LocalDate) bool { return d.ordinal() < o.ordinal() }
func (d LocalDate) After(o LocalDate) bool  { return d.ordinal() > o.ordinal() }
func (d LocalDate) Equal(o LocalDate) bool  { return d.ordinal() == o.ordinal() }

// AddDays returns the date n days later (or earlier for negative n),
// rolling over month and year boundaries.
func (d LocalDate) AddDays(n int) LocalDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// TimezoneLocal is the timezone mode selecting the host clock.
const TimezoneLocal = "local"

// Projector converts UTC instants into calendar dates under the effective
// timezone. It is the single source of truth for "same calendar day"
// decisions; span allocation and day membership both go through it.
type Projector struct {
	loc *time.Location
}

// NewProjector resolves a timezone mode into a Projector. The mode is either
// TimezoneLocal (or empty) for the host clock, or an IANA zone name.
func NewProjector(mode string) (*Projector, error) {
	if mode == "" || mode == TimezoneLocal {
		return &Projector{loc: time.Local}, nil
	}
	loc, err := time.LoadLocation(mode)
	if err != nil {
		return nil, err
	}
	return &Projector{loc: loc}, nil
}

// ProjectorAt wraps an already-resolved location. A nil location means the
// host clock.
func ProjectorAt(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{loc: loc}
}

// Location returns the effective timezone.
func (p *Projector) Location() *time.Location {
	return p.loc
}

// ProjectDate returns the calendar date the instant falls on in the
// effective timezone.
func (p *Projector) ProjectDate(t time.Time) LocalDate {
	local := t.In(p.loc)
	return LocalDate{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// SameDay reports whether two instants share a calendar day in the
// effective timezone.
func (p *Projector) SameDay(a, b time.Time) bool {
	return p.ProjectDate(a).Equal(p.ProjectDate(b))
}
