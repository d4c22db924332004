package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventx_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventx_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	TicketsBooked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventx_tickets_booked_total",
			Help: "Tickets issued by successful bookings",
		},
	)

	BookingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventx_booking_rejections_total",
			Help: "Bookings refused, by reason",
		},
		[]string{"reason"},
	)

	CheckIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventx_checkins_total",
			Help: "Check-in attempts, by result",
		},
		[]string{"result"},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventx_jobs_processed_total",
			Help: "Side-effect jobs handled, by type and result",
		},
		[]string{"type", "result"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventx_rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventx_realtime_connections",
			Help: "Open realtime connections on this instance",
		},
	)
)
