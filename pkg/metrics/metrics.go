// Package metrics defines the Prometheus metrics of the service. Metrics are
// registered with the default registry on import and exposed by the API
// server on /metrics.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "diplomatarium"

var (
	ShardsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shards_loaded_total",
		Help:      "Shards fetched, decoded and indexed",
	})

	ShardsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shards_failed_total",
		Help:      "Shards that could not be fetched or decoded",
	})

	ShardLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "shard_load_duration_seconds",
		Help:      "Time to fetch, decode and index one shard",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	Documents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "documents",
		Help:      "Documents held in the corpus",
	})

	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Searches executed, by outcome",
	}, []string{"outcome"}) // "hits" / "empty"

	SearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Search evaluation time",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		ShardsLoaded, ShardsFailed, ShardLoadDuration, Documents,
		SearchesTotal, SearchDuration,
		httpRequestDuration, httpRequestsTotal,
	)
}

// ObserveSearch records one search.
func ObserveSearch(elapsed time.Duration, hits int) {
	SearchDuration.Observe(elapsed.Seconds())
	outcome := "hits"
	if hits == 0 {
		outcome = "empty"
	}
	SearchesTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records duration and count of requests served by next under the
// route pattern label.
func Instrument(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.status)
		httpRequestDuration.WithLabelValues(r.Method, pattern, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
	})
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}

// Hijack hands the connection over for websocket upgrades. A hijacked
// request is recorded as 101.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status, w.wroteHeader = http.StatusSwitchingProtocols, true
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
