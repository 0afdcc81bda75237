// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ims_http_requests_total",
	Help: "The total number of HTTP requests by route, method and status",
}, []string{"route", "method", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ims_http_request_duration_seconds",
	Help:    "Duration of HTTP requests in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"route", "method"})

var ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ims_applications_submitted_total",
	Help: "The total number of applications submitted",
})

var ApplicationStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ims_application_status_changes_total",
	Help: "The total number of application status changes by new status",
}, []string{"status"})

var InterviewsScheduled = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ims_interviews_scheduled_total",
	Help: "The total number of interviews scheduled",
})

var UpdatesPosted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ims_updates_posted_total",
	Help: "The total number of notification updates posted",
})

var JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ims_jobs_processed_total",
	Help: "The total number of background jobs processed by type and outcome",
}, []string{"type", "outcome"})

var EventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ims_event_subscribers",
	Help: "The number of connected event stream subscribers",
})

// ObserveJob matches jobs.Observer.
func ObserveJob(jobType, outcome string) {
	JobsProcessed.WithLabelValues(jobType, outcome).Inc()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
