package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CommentsCreatedTotal *prometheus.CounterVec
	CommentVotesTotal    *prometheus.CounterVec
	CommentTreeSize      prometheus.Histogram
	ModerationActions    *prometheus.CounterVec

	ProximityNotifications prometheus.Counter
	RealtimeClients        prometheus.Gauge
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide collectors, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "route"},
			),
			CommentsCreatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "travellinq_comments_created_total",
					Help: "Comments created, split into top-level and replies",
				},
				[]string{"kind"},
			),
			CommentVotesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "travellinq_comment_votes_total",
					Help: "Comment votes cast",
				},
				[]string{"direction"},
			),
			CommentTreeSize: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "travellinq_comment_tree_size",
					Help:    "Number of comments in a built thread",
					Buckets: prometheus.ExponentialBuckets(1, 2, 10),
				},
			),
			ModerationActions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "travellinq_moderation_actions_total",
					Help: "Admin moderation actions",
				},
				[]string{"action"},
			),
			ProximityNotifications: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "travellinq_proximity_notifications_total",
					Help: "Buddy proximity notifications sent",
				},
			),
			RealtimeClients: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "travellinq_realtime_clients",
					Help: "Connected websocket clients",
				},
			),
		}
	})
	return instance
}

// Middleware records request counts and latency per matched route.
func Middleware() fiber.Handler {
	m := Get()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
