package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the service's Prometheus metrics.
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReservationsCommitted prometheus.Counter
	ReservationConflicts  prometheus.Counter
	CreationsBlocked      prometheus.Counter
	FlightsScheduled      prometheus.Counter
}

func NewRegistry() *Registry {
	return &Registry{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airsched_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airsched_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"endpoint", "method"},
		),
		ReservationsCommitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "airsched_reservations_committed_total",
				Help: "Seat reservations committed",
			},
		),
		ReservationConflicts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "airsched_reservation_conflicts_total",
				Help: "Seat reservation attempts rejected with a conflict",
			},
		),
		CreationsBlocked: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "airsched_flight_creations_blocked_total",
				Help: "Flight creation requests blocked on resource availability",
			},
		),
		FlightsScheduled: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "airsched_flights_scheduled_total",
				Help: "Flights committed to the schedule",
			},
		),
	}
}

// Middleware records request counts and latency per gin route.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		r.HTTPRequestsTotal.WithLabelValues(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		r.HTTPRequestDuration.WithLabelValues(endpoint, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
