package layout

import (
	"sort"

	"gridcal/internal/model"
)

// SpanningEvent is one event's placement within a single week row: the
// 1-based start column, the number of columns covered, and whether the
// segment contains the event's true start/end or continues across the
// week boundary.
//
// Invariant: 1 <= StartCol and StartCol+Span-1 <= 7.
type SpanningEvent struct {
	Event    model.Event `json:"event"`
	StartCol int         `json:"start_col"`
	Span     int         `json:"span"`
	IsStart  bool        `json:"is_start"`
	IsEnd    bool        `json:"is_end"`
}

// eventRange pairs an event with its projected calendar date range. Dates
// are projected once per computation, not once per week row.
type eventRange struct {
	ev    model.Event
	start LocalDate
	end   LocalDate
}

// projectEvents projects each event's instants into the effective timezone.
// Invalid events (zero or inverted instants) are dropped here; placement
// works on date ranges only, time-of-day is discarded.
func projectEvents(events []model.Event, p *Projector) []eventRange {
	out := make([]eventRange, 0, len(events))
	for _, ev := range events {
		if !ev.Valid() {
			continue
		}
		out = append(out, eventRange{
			ev:    ev,
			start: p.ProjectDate(ev.StartUTC),
			end:   p.ProjectDate(ev.EndUTC),
		})
	}
	return out
}

// allocateWeek computes the spanning-bar placements for one week row.
//
// The week's effective bounds are its first and last in-month days; leading
// and trailing out-of-month cells never act as week bounds. An event whose
// true start precedes the effective week start becomes a continuation
// (StartCol 1, IsStart false); symmetrically for the end at column 7. That
// forcing is applied last, so continuation bars span the full row even when
// the row has out-of-month cells.
//
// The result is ordered by StartCol ascending, then Span descending (longer
// bars first). Stacking row = slice index: this is deliberately the simple
// sequential assignment, not interval-graph lane packing.
func allocateWeek(g Grid, week int, ranges []eventRange) []SpanningEvent {
	firstCol, lastCol, ok := g.occupiedCols(week)
	if !ok {
		return nil
	}
	weekStart := LocalDate{Year: g.Year, Month: g.Month, Day: g.Days[week*7+firstCol-1]}
	weekEnd := LocalDate{Year: g.Year, Month: g.Month, Day: g.Days[week*7+lastCol-1]}

	out := make([]SpanningEvent, 0)

	for _, r := range ranges {
		// No overlap with this week at all.
		if r.end.Before(weekStart) || r.start.After(weekEnd) {
			continue
		}

		startCol, endCol := firstCol, lastCol
		isStart, isEnd := false, false

		for col := 0; col < 7; col++ {
			day := g.Days[week*7+col]
			if day == 0 {
				continue
			}
			cell := LocalDate{Year: g.Year, Month: g.Month, Day: day}

			if cell.Equal(r.start) {
				startCol = col + 1
				isStart = true
			} else if cell.Before(r.start) {
				// Event has not started yet at this cell.
				startCol = col + 2
			}

			if cell.Equal(r.end) {
				endCol = col + 1
				isEnd = true
			}
			if cell.After(r.end) {
				endCol = col
				break
			}
		}

		// Keep scan results inside the month's occupied columns.
		if startCol < firstCol {
			startCol = firstCol
		}
		if endCol > lastCol {
			endCol = lastCol
		}

		// Continuations from a previous or into a following week cover the
		// full row edge.
		if r.start.Before(weekStart) {
			startCol = 1
			isStart = false
		}
		if r.end.After(weekEnd) {
			endCol = 7
			isEnd = false
		}

		span := endCol - startCol + 1
		if span <= 0 || startCol < 1 || startCol > 7 {
			continue
		}

		out = append(out, SpanningEvent{
			Event:    r.ev,
			StartCol: startCol,
			Span:     span,
			IsStart:  isStart,
			IsEnd:    isEnd,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartCol != out[j].StartCol {
			return out[i].StartCol < out[j].StartCol
		}
		return out[i].Span > out[j].Span
	})

	return out
}
