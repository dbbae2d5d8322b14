package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExporterServesRecordedCounters(t *testing.T) {
	exporter, err := NewExporter()
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	m := New(exporter.MeterProvider().Meter("test"))

	ctx := context.Background()
	m.EngagementToggled(ctx, "favourite", "favourited")
	m.HighlightCreated(ctx)
	m.RatingRecorded(ctx, 4)

	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	exporter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"speaksfer_engagement_toggle_count",
		"speaksfer_highlight_created_count",
		"speaksfer_rating_recorded_count",
		"http_server_completed_count",
		`http_status="418"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition:\n%s", want, body)
		}
	}
}
