// Package metrics owns the OpenTelemetry instruments of the service and
// the Prometheus exporter serving them on the diag router.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

var (
	stateKey  = attribute.Key("engagement.state")
	kindKey   = attribute.Key("engagement.kind")
	methodKey = attribute.Key("http.method")
	statusKey = attribute.Key("http.status")
	valueKey  = attribute.Key("rating.value")
)

// NewExporter builds the Prometheus exporter and installs its meter
// provider globally.
func NewExporter() (*prometheus.Exporter, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	return exporter, nil
}

// Metrics is the set of instruments recorded by the API.
type Metrics struct {
	requestsCompleted metric.Int64Counter
	requestLatency    metric.Float64ValueRecorder
	engagementToggles metric.Int64Counter
	highlights        metric.Int64Counter
	ratings           metric.Int64Counter
	comments          metric.Int64Counter
	bookmarks         metric.Int64Counter
}

// New registers the instruments on meter.
func New(meter metric.Meter) *Metrics {
	must := metric.Must(meter)

	return &Metrics{
		requestsCompleted: must.NewInt64Counter(
			"http/server/completed_count",
			metric.WithDescription("Count of completed requests, by HTTP method and response status"),
		),
		requestLatency: must.NewFloat64ValueRecorder(
			"http/server/latency_ms",
			metric.WithDescription("Request latency in milliseconds, by HTTP method"),
		),
		engagementToggles: must.NewInt64Counter(
			"speaksfer/engagement/toggle_count",
			metric.WithDescription("Count of favourite and unfavourite toggles, by resulting state"),
		),
		highlights: must.NewInt64Counter(
			"speaksfer/highlight/created_count",
			metric.WithDescription("Count of created highlights"),
		),
		ratings: must.NewInt64Counter(
			"speaksfer/rating/recorded_count",
			metric.WithDescription("Count of recorded ratings, by value"),
		),
		comments: must.NewInt64Counter(
			"speaksfer/comment/created_count",
			metric.WithDescription("Count of created comments"),
		),
		bookmarks: must.NewInt64Counter(
			"speaksfer/bookmark/created_count",
			metric.WithDescription("Count of newly created bookmarks"),
		),
	}
}

// Handler records completion count and latency of every request.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ctx := r.Context()
		m.requestsCompleted.Add(ctx, 1, methodKey.String(r.Method), statusKey.String(strconv.Itoa(status)))
		m.requestLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000, methodKey.String(r.Method))
	})
}

// EngagementToggled counts a favourite ("favourite") or unfavourite
// ("unfavourite") toggle that ended in state.
func (m *Metrics) EngagementToggled(ctx context.Context, kind, state string) {
	m.engagementToggles.Add(ctx, 1, kindKey.String(kind), stateKey.String(state))
}

func (m *Metrics) HighlightCreated(ctx context.Context) {
	m.highlights.Add(ctx, 1)
}

func (m *Metrics) RatingRecorded(ctx context.Context, value int) {
	m.ratings.Add(ctx, 1, valueKey.Int(value))
}

func (m *Metrics) CommentCreated(ctx context.Context) {
	m.comments.Add(ctx, 1)
}

func (m *Metrics) BookmarkCreated(ctx context.Context) {
	m.bookmarks.Add(ctx, 1)
}
