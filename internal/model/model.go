package model

import "time"

// Event is a single date-ranged calendar entry as consumed by the layout
// engine. Instants are always UTC; projection into the display timezone
// happens inside the engine so day boundaries stay consistent.
//
// Events are owned by the ingestion side and treated as read-only during a
// layout computation.
type Event struct {
	// ID is a stable integer identity. For ICS-sourced events it is derived
	// from source ID + UID + instance key, so repeated refreshes of the same
	// feed produce the same IDs.
	ID int64 `json:"id"`

	Name string `json:"name"`

	// StartUTC / EndUTC delimit the event. EndUTC must be strictly after
	// StartUTC; the engine drops entries violating this instead of fixing them.
	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`

	// ColorIndex selects a display color slot; the engine carries it through
	// untouched.
	ColorIndex int `json:"color_index"`
}

// Valid reports whether the event can participate in layout at all.
func (e Event) Valid() bool {
	if e.StartUTC.IsZero() || e.EndUTC.IsZero() {
		return false
	}
	return e.EndUTC.After(e.StartUTC)
}

// EndedBefore reports whether the event is already over at the given instant.
func (e Event) EndedBefore(now time.Time) bool {
	return e.EndUTC.Before(now)
}
