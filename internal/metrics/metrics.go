// Package metrics собирает Prometheus-метрики HTTP-запросов и жизненного цикла визитов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "patrol"

// Metrics хранит зарегистрированные коллекторы.
type Metrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	visitsCreated   prometheus.Counter
	visitRejections *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	reminders       prometheus.Counter
}

// New регистрирует коллекторы в reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		visitsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_created_total",
			Help:      "Visits created by clients.",
		}),
		visitRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visit_create_rejections_total",
			Help:      "Visit creation attempts rejected by eligibility checks.",
		}, []string{"reason"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visit_status_transitions_total",
			Help:      "Visit status transitions.",
		}, []string{"from", "to"}),
		reminders: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visit_reminders_published_total",
			Help:      "Visit reminders published to the broker.",
		}),
	}
}

// VisitCreated учитывает созданный визит.
func (m *Metrics) VisitCreated() {
	m.visitsCreated.Inc()
}

// VisitRejected учитывает отказ в создании визита.
func (m *Metrics) VisitRejected(reason string) {
	m.visitRejections.WithLabelValues(reason).Inc()
}

// VisitTransition учитывает смену статуса визита.
func (m *Metrics) VisitTransition(from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

// ReminderPublished учитывает отправленное напоминание.
func (m *Metrics) ReminderPublished() {
	m.reminders.Inc()
}

// Middleware считает запросы по шаблону маршрута chi, а не по сырому пути,
// чтобы id в URL не раздували число серий.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
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
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
