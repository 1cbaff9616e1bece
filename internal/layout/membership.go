package layout

import "gridcal/internal/model"

// MembershipIndex answers "which events touch day D" for badges and the
// day-detail panel. It is independent of the spanning-bar layout but shares
// the same projected date ranges, so both views always agree.
type MembershipIndex struct {
	ranges []eventRange
}

// NewMembershipIndex projects the given events once. The caller applies any
// upstream filtering (validity, hide-ended) before constructing the index so
// that bars and badges see the same event set.
func NewMembershipIndex(events []model.Event, p *Projector) *MembershipIndex {
	return &MembershipIndex{ranges: projectEvents(events, p)}
}

// EventsOn returns the events whose projected date range contains the given
// day, inclusive on both ends, in input order.
func (ix *MembershipIndex) EventsOn(date LocalDate) []model.Event {
	out := make([]model.Event, 0)
	for _, r := range ix.ranges {
		if !date.Before(r.start) && !date.After(r.end) {
			out = append(out, r.ev)
		}
	}
	return out
}

// CountOn returns the number of events touching the given day.
func (ix *MembershipIndex) CountOn(date LocalDate) int {
	n := 0
	for _, r := range ix.ranges {
		if !date.Before(r.start) && !date.After(r.end) {
			n++
		}
	}
	return n
}
