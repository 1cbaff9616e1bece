package layout

// Visible-bar caps per week row. Compact mode trades bar height for one
// extra slot.
const (
	maxVisibleNormal  = 5
	maxVisibleCompact = 6

	// ExpandThreshold is the per-day event count above which a day becomes
	// expandable (the consumer fetches the full membership list on demand).
	ExpandThreshold = 5
)

// MaxVisible returns the per-week spanning-bar cap for the given settings.
// It is a pure function of settings, never of content.
func MaxVisible(s DisplaySettings) int {
	if s.CompactMode {
		return maxVisibleCompact
	}
	return maxVisibleNormal
}

// Truncated is a week's bar list capped for display.
type Truncated struct {
	Visible     []SpanningEvent
	HiddenCount int
}

// Truncate keeps the first maxVisible entries of an already-sorted span list
// and counts the rest. The sort order from allocateWeek decides which bars
// survive; truncation never reorders.
func Truncate(spans []SpanningEvent, maxVisible int) Truncated {
	if maxVisible < 0 {
		maxVisible = 0
	}
	if len(spans) <= maxVisible {
		return Truncated{Visible: spans, HiddenCount: 0}
	}
	return Truncated{
		Visible:     spans[:maxVisible],
		HiddenCount: len(spans) - maxVisible,
	}
}
