package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridcal/internal/config"
	"gridcal/internal/ics"
	"gridcal/internal/layout"
)

const feedICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:planning@example.com
SUMMARY:Planning
DTSTART:20240205T090000Z
DTEND:20240207T100000Z
END:VEVENT
END:VCALENDAR
`

// newTestServer wires a Server against a local ICS feed.
func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedICS))
	}))
	t.Cleanup(feed.Close)

	cfg := config.DefaultConfig()
	cfg.Display.WeekStart = "sunday"
	cfg.ICS = []config.ICSConfig{{ID: "work", URL: feed.URL, ColorIndex: 2}}
	if mutate != nil {
		mutate(cfg)
	}

	fetcher := ics.NewFetcher(t.TempDir(), 0)
	svc := ics.NewService(fetcher, []ics.Source{{ID: "work", URL: feed.URL, ColorIndex: 2}})

	return NewServer(cfg, svc, layout.ProjectorAt(time.UTC))
}

func TestHandleMonth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/month?year=2024&month=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got layout.MonthLayout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, 2, int(got.Month))
	require.Len(t, got.Weeks, 5)

	// Feb 5-7 lands in the second row with a three-column bar.
	week := got.Weeks[1]
	require.Len(t, week.Spans, 1)
	span := week.Spans[0]
	assert.Equal(t, "Planning", span.Event.Name)
	assert.Equal(t, 2, span.StartCol)
	assert.Equal(t, 3, span.Span)
	assert.True(t, span.IsStart)
	assert.True(t, span.IsEnd)
}

func TestHandleMonth_InvalidParams(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{
		"/api/month?year=abc",
		"/api/month?month=13",
		"/api/month?month=0",
	} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHandleDay(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/day?year=2024&month=2&day=6", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got dayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 6, got.Day)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "Planning", got.Events[0].Name)

	// A day outside the event range is empty but still well-formed.
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/day?year=2024&month=2&day=20", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Zero(t, got.Count)
}

func TestHandleDay_InvalidDay(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/day?year=2024&month=2&day=42", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEvents(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?year=2024&month=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got eventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "UTC", got.Timezone)
	require.Len(t, got.Events, 1)
	assert.Equal(t, 2, got.Events[0].ColorIndex)
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.BasicAuth = &config.BasicAuthConfig{Username: "cal", Password: "secret"}
	})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/month?year=2024&month=2", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/month?year=2024&month=2", nil)
	req.SetBasicAuth("cal", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays reachable for probes regardless of auth.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
