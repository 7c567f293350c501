package telemetry

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"cocreate/pkg/logger"
	"cocreate/pkg/store"
)

var (
	requestCtr    uint64
	slowThreshold atomic.Int64
)

func init() {
	slowThreshold.Store(int64(200 * time.Millisecond))
}

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocreate",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route template, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cocreate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// Logins counts login attempts by result (ok, bad_credentials, invalid).
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocreate",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	Registrations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cocreate",
		Name:      "registrations_total",
		Help:      "Successful user registrations.",
	})

	MessagesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cocreate",
		Name:      "messages_created_total",
		Help:      "Messages stored.",
	})

	// FavoriteToggles counts favorite changes by action (add, remove).
	FavoriteToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocreate",
		Name:      "favorite_toggles_total",
		Help:      "Favorite changes by action.",
	}, []string{"action"})

	SessionsPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cocreate",
		Name:      "sessions_purged_total",
		Help:      "Expired sessions removed by the sweeper.",
	})

	storeDiskBytes = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cocreate",
		Name:      "store_disk_bytes",
		Help:      "On-disk size of the Pebble database.",
	}, func() float64 { return float64(store.GetPebbleMetrics().DiskBytes) })

	storeL0Files = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cocreate",
		Name:      "store_l0_files",
		Help:      "Number of L0 sstables in the Pebble database.",
	}, func() float64 { return float64(store.GetPebbleMetrics().L0Files) })
)

func init() {
	prometheus.MustRegister(
		httpRequests, httpDuration,
		Logins, Registrations, MessagesCreated, FavoriteToggles, SessionsPurged,
		storeDiskBytes, storeL0Files,
	)
}

// Middleware records request counts and latency. Mounted with
// (*mux.Router).Use it labels by route template; elsewhere by "other".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		dur := time.Since(start)

		route := "other"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(srw.status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(dur.Seconds())

		if dur > time.Duration(slowThreshold.Load()) {
			logger.Warn("slow_request",
				"request_id", genRequestID(),
				"route", route,
				"method", r.Method,
				"duration_ms", dur.Milliseconds(),
				"status", srw.status,
			)
		}
	})
}

// SetSlowThreshold sets the duration above which requests are logged as slow.
func SetSlowThreshold(d time.Duration) {
	if d < 0 {
		d = 0
	}
	slowThreshold.Store(int64(d))
}

func genRequestID() string {
	n := atomic.AddUint64(&requestCtr, 1)
	return "r-" + time.Now().Format("20060102T150405") + "-" + strconv.FormatUint(n, 10)
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
