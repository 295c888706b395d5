package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FormsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qforms_forms_created_total",
		Help: "Forms created.",
	})
	FormsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qforms_forms_updated_total",
		Help: "Forms whose question set was replaced.",
	})
	FormsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qforms_forms_deleted_total",
		Help: "Forms deleted.",
	})
	QuestionsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qforms_questions_skipped_total",
		Help: "Malformed question entries skipped during updates.",
	})
	Submissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qforms_submissions_total",
		Help: "Form submissions recorded.",
	})
	SubmissionAnswers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qforms_submission_answers_total",
		Help: "Answer rows recorded across all submissions.",
	})
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qforms_form_cache_lookups_total",
		Help: "Public form cache lookups by result.",
	}, []string{"result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qforms_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Instrument records request latency labelled with the matched chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
