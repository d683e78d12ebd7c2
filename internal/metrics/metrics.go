package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	UploadOK     = "ok"
	UploadFailed = "failed"
	DeleteOK     = "deleted"
	DeleteFailed = "delete_failed"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "canva",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canva",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "canva",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route"},
	)

	mediaOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canva",
			Subsystem: "media",
			Name:      "operations_total",
			Help:      "Media host uploads and deletions by outcome.",
		},
		[]string{"outcome"},
	)

	authEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canva",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Authentication events by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight, httpRequests, httpDuration, mediaOps, authEvents,
	)
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordMedia counts a media host operation.
func RecordMedia(outcome string) {
	mediaOps.WithLabelValues(outcome).Inc()
}

// RecordAuth counts an authentication event.
func RecordAuth(kind string) {
	authEvents.WithLabelValues(kind).Inc()
}

// Middleware records request count, latency and in-flight gauge. Routes are
// labelled by chi pattern so ids do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
