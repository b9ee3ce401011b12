// Package metrics holds the Prometheus collectors of the application and the
// HTTP middleware that feeds the request collectors.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "izposoja_reservations_created_total",
		Help: "Reservations accepted",
	})
	ReservationsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "izposoja_reservations_rejected_total",
			Help: "Reservation requests rejected, by reason",
		},
		[]string{"reason"},
	)
	ReservationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "izposoja_reservations_cancelled_total",
		Help: "Reservations cancelled with a matching token",
	})
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "izposoja_cache_lookups_total",
			Help: "Response cache lookups, by result",
		},
		[]string{"result"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NormalizePath reduces a request path to a low-cardinality label: the first
// segment, or the first two below /api/v1.
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	segments := strings.Split(p, "/")
	if len(segments) >= 3 && segments[0] == "api" {
		return "api/" + segments[1] + "/" + segments[2]
	}
	if segments[0] == "" {
		return "root"
	}
	return segments[0]
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests and observes their duration.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := NormalizePath(r.URL.Path)
		RequestTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
