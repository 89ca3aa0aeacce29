// Package metrics defines Prometheus metrics for notification delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
	StatusOK     = "ok"
)

var (
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stocknotify_notifications_total",
		Help: "Total number of notification send attempts by kind and outcome",
	}, []string{"kind", "status"})
	NotificationSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stocknotify_notification_send_duration_seconds",
		Help:    "Time spent handing a notification to the SMTP server",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})
	LowStockScans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stocknotify_low_stock_scans_total",
		Help: "Total number of low-stock scans by outcome",
	}, []string{"status"})
	LowStockProducts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stocknotify_low_stock_products",
		Help: "Number of products at or below their threshold in the last scan",
	})
	EventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stocknotify_events_dropped_total",
		Help: "Events dropped because the event bus buffer was full",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(NotificationSendDuration)
	prometheus.MustRegister(LowStockScans)
	prometheus.MustRegister(LowStockProducts)
	prometheus.MustRegister(EventsDropped)
}

// Handler returns an http.Handler exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
