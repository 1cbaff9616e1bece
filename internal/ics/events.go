package ics

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	appLog "gridcal/internal/log"
	"gridcal/internal/model"
)

// Service ties the fetch/parse/expand pipeline together and hands the layout
// engine a flat []model.Event for a time window.
type Service struct {
	fetcher *Fetcher
	sources []Source
}

// NewService creates a Service over the given sources.
func NewService(fetcher *Fetcher, sources []Source) *Service {
	return &Service{fetcher: fetcher, sources: sources}
}

// EventsForRange fetches all sources, parses and expands them, and converts
// the occurrences intersecting [start, end] into events. Per-source failures
// degrade to the remaining sources; the error list is for logging only.
func (s *Service) EventsForRange(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	results, fetchErrs := s.fetcher.FetchAll(ctx, s.sources)
	if len(fetchErrs) > 0 {
		appLog.Error("ics: one or more fetches failed", errors.Join(fetchErrs...), "error_count", len(fetchErrs))
	}

	parsed := make([]ParsedEvent, 0)
	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics: parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	expanded, err := ExpandOccurrences(parsed, ExpandConfig{
		RangeStart: start,
		RangeEnd:   end,
	})
	if err != nil {
		return nil, err
	}

	return EventsFromOccurrences(expanded.Occurrences), nil
}

// EventsFromOccurrences converts occurrences into layout events. Instants
// are normalized to UTC; identity is a stable hash of source, UID and
// instance key so refreshes keep IDs constant without a persistence layer.
func EventsFromOccurrences(occs []Occurrence) []model.Event {
	out := make([]model.Event, 0, len(occs))
	for _, occ := range occs {
		ev := model.Event{
			ID:         eventID(occ.Source.ID, occ.UID, occ.InstanceKey),
			Name:       occ.Summary,
			StartUTC:   occ.Start.UTC(),
			EndUTC:     inclusiveEnd(occ).UTC(),
			ColorIndex: occ.Source.ColorIndex,
		}
		if !ev.Valid() {
			// Inverted or zero-length instances never reach the layout engine.
			appLog.Debug("ics: dropping invalid occurrence", "uid", occ.UID, "instance", occ.InstanceKey)
			continue
		}
		out = append(out, ev)
	}
	return out
}

// inclusiveEnd converts an occurrence's exclusive ICS end instant (RFC 5545
// DTEND) into the inclusive end-date semantics the layout engine projects.
// Ends landing exactly on a day boundary in the event's own timezone, which
// is every all-day end and any timed event ending at midnight, are pulled
// back one second so the event stays on its last covered day instead of
// leaking onto the next one.
func inclusiveEnd(occ Occurrence) time.Time {
	if occ.AllDay || isMidnight(occ.End) {
		return occ.End.Add(-time.Second)
	}
	return occ.End
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// eventID derives a stable 63-bit identity from the occurrence coordinates.
func eventID(sourceID, uid, instanceKey string) int64 {
	h := fnv.New64a()
	h.Write([]byte(sourceID))
	h.Write([]byte{0})
	h.Write([]byte(uid))
	h.Write([]byte{0})
	h.Write([]byte(instanceKey))
	return int64(h.Sum64() &^ (1 << 63))
}

