// Package web exposes the computed month layout over a small JSON API. It is
// the rendering collaborator's boundary: grid plus spanning bars per week,
// per-day badge counts, and on-demand day-detail lists.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gridcal/internal/config"
	"gridcal/internal/ics"
	"gridcal/internal/layout"
	appLog "gridcal/internal/log"
	"gridcal/internal/model"
)

// eventsCacheTTL bounds how stale the per-window event snapshot may get
// between background refreshes.
const eventsCacheTTL = 30 * time.Second

// Server provides the HTTP API over the layout engine.
type Server struct {
	cfg       *config.Config
	mux       *http.ServeMux
	events    *ics.Service
	layouts   *layout.Cache
	projector *layout.Projector

	// Snapshot of expanded events per displayed month, so interactive
	// requests do not re-run fetch/parse/expand every time.
	snapMu    sync.RWMutex
	snapshots map[string]*eventsSnapshot
}

type eventsSnapshot struct {
	events    []model.Event
	updatedAt time.Time
}

// NewServer constructs a Server. The projector must already be resolved from
// the configured timezone mode.
func NewServer(cfg *config.Config, events *ics.Service, projector *layout.Projector) *Server {
	s := &Server{
		cfg:       cfg,
		mux:       http.NewServeMux(),
		events:    events,
		layouts:   layout.NewCache(0, 0),
		projector: projector,
		snapshots: make(map[string]*eventsSnapshot),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler, wrapped with basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="gridcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/month", s.handleMonth)
	s.mux.HandleFunc("/api/day", s.handleDay)
	s.mux.HandleFunc("/api/events", s.handleEvents)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// displaySettings maps the configured display options onto engine settings.
func (s *Server) displaySettings() layout.DisplaySettings {
	d := s.cfg.Display
	return layout.DisplaySettings{
		WeekStartDay:       layout.WeekStartDay(d.WeekStart),
		ShowAdjacentMonths: d.ShowAdjacentMonths,
		ShowWeekNumbers:    d.ShowWeekNumbers,
		HideEndedEvents:    d.HideEndedEvents,
		EventStyle:         layout.EventStyle(d.EventStyle),
		CompactMode:        d.CompactMode,
	}.Normalize()
}

// monthParam reads year/month query parameters, defaulting to the current
// month in the effective timezone.
func (s *Server) monthParam(r *http.Request) (layout.CalendarMonth, error) {
	now := time.Now().In(s.projector.Location())
	q := r.URL.Query()

	year := now.Year()
	month := int(now.Month())

	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return layout.CalendarMonth{}, fmt.Errorf("invalid year %q", v)
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return layout.CalendarMonth{}, fmt.Errorf("invalid month %q", v)
		}
		month = n
	}

	return layout.CalendarMonth{Year: year, Month: time.Month(month)}, nil
}

// EventsForMonth returns the expanded events intersecting the month's full
// grid window (including leading/trailing out-of-month cells), with a short
// TTL snapshot so bursts of UI requests share one pipeline run.
func (s *Server) EventsForMonth(ctx context.Context, m layout.CalendarMonth) ([]model.Event, error) {
	key := fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
	now := time.Now()

	s.snapMu.RLock()
	snap := s.snapshots[key]
	s.snapMu.RUnlock()
	if snap != nil && now.Sub(snap.updatedAt) < eventsCacheTTL {
		return snap.events, nil
	}

	start, end := monthWindow(m, s.displaySettings().WeekStartDay, s.projector.Location())
	events, err := s.events.EventsForRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	s.snapMu.Lock()
	s.snapshots[key] = &eventsSnapshot{events: events, updatedAt: time.Now()}
	s.snapMu.Unlock()

	return events, nil
}

// monthWindow computes the instant range covered by the month's grid,
// padded one week on each side so continuations at the view edges resolve.
func monthWindow(m layout.CalendarMonth, start layout.WeekStartDay, loc *time.Location) (time.Time, time.Time) {
	grid := layout.BuildGrid(m, start)
	first := time.Date(m.Year, m.Month, 1-grid.FirstDayOffset-7, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 0, grid.Weeks*7+14)
	return first, last
}

// handleMonth returns the full computed layout for one month.
//
// GET /api/month?year=2024&month=2
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	m, err := s.monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.EventsForMonth(r.Context(), m)
	if err != nil {
		appLog.Error("api month: event pipeline failed", err, "year", m.Year, "month", int(m.Month))
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	result := s.layouts.BuildMonth(layout.Input{
		Events:   events,
		Month:    m,
		Settings: s.displaySettings(),
		Location: s.projector.Location(),
		Now:      time.Now(),
	})

	writeJSON(w, http.StatusOK, result)
}

// dayResponse is the day-detail payload backing the expansion panel.
type dayResponse struct {
	Year   int           `json:"year"`
	Month  int           `json:"month"`
	Day    int           `json:"day"`
	Count  int           `json:"count"`
	Events []model.Event `json:"events"`
}

// handleDay returns the full membership list for one day. This is the data
// source for the "+N more" expansion panel; panel open/close state itself is
// a client concern.
//
// GET /api/day?year=2024&month=2&day=14
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	m, err := s.monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil || day < 1 || day > 31 {
		writeError(w, http.StatusBadRequest, "invalid day")
		return
	}

	events, err := s.EventsForMonth(r.Context(), m)
	if err != nil {
		appLog.Error("api day: event pipeline failed", err, "year", m.Year, "month", int(m.Month))
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	filtered := layout.FilterEvents(events, s.displaySettings(), time.Now())
	index := layout.NewMembershipIndex(filtered, s.projector)
	onDay := index.EventsOn(layout.LocalDate{Year: m.Year, Month: m.Month, Day: day})

	writeJSON(w, http.StatusOK, dayResponse{
		Year:   m.Year,
		Month:  int(m.Month),
		Day:    day,
		Count:  len(onDay),
		Events: onDay,
	})
}

// eventsResponse is the flat expanded-events payload.
type eventsResponse struct {
	Year     int           `json:"year"`
	Month    int           `json:"month"`
	Timezone string        `json:"timezone"`
	Events   []model.Event `json:"events"`
}

// handleEvents returns the raw expanded events for a month's grid window.
//
// GET /api/events?year=2024&month=2
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	m, err := s.monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.EventsForMonth(r.Context(), m)
	if err != nil {
		appLog.Error("api events: event pipeline failed", err, "year", m.Year, "month", int(m.Month))
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Year:     m.Year,
		Month:    int(m.Month),
		Timezone: s.projector.Location().String(),
		Events:   events,
	})
}

// StartServer starts an HTTP server bound to cfg.Listen and blocks until it
// fails or ctx is cancelled.
func StartServer(ctx context.Context, cfg *config.Config, events *ics.Service, projector *layout.Projector) error {
	s := NewServer(cfg, events, projector)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
