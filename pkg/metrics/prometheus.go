// Package metrics exports mailbox activity to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mailbox-go/mailbox-go/pkg/mailbox"
)

// PrometheusMetrics implements mailbox.Metrics with Prometheus collectors.
// One instance can be shared by any number of mailboxes.
type PrometheusMetrics struct {
	subscriptions       *prometheus.CounterVec
	unsubscriptions     prometheus.Counter
	deliveries          *prometheus.CounterVec
	drops               *prometheus.CounterVec
	activeSubscriptions prometheus.Gauge
}

// NewPrometheusMetrics registers the mailbox collectors with registerer.
// A nil registerer means prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		subscriptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_subscriptions_total",
				Help: "Total number of subscribe calls by destination and result",
			},
			[]string{"destination", "result"},
		),
		unsubscriptions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbox_unsubscriptions_total",
				Help: "Total number of subscriptions removed",
			},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_deliveries_total",
				Help: "Total number of messages handed to destinations",
			},
			[]string{"kind", "queued"},
		),
		drops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_drops_total",
				Help: "Total number of changes not delivered",
			},
			[]string{"reason"},
		),
		activeSubscriptions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mailbox_active_subscriptions",
				Help: "Current number of subscriptions across all mailboxes",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveSubscribe(destination string, accepted bool) {
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	p.subscriptions.WithLabelValues(destination, result).Inc()
}

func (p *PrometheusMetrics) ObserveUnsubscribe(removed int) {
	p.unsubscriptions.Add(float64(removed))
}

func (p *PrometheusMetrics) ObserveDelivery(kind mailbox.Kind, queued bool) {
	p.deliveries.WithLabelValues(kind.String(), strconv.FormatBool(queued)).Inc()
}

func (p *PrometheusMetrics) ObserveDrop(reason mailbox.DropReason) {
	p.drops.WithLabelValues(string(reason)).Inc()
}

func (p *PrometheusMetrics) SetActiveSubscriptions(count int) {
	p.activeSubscriptions.Set(float64(count))
}

var _ mailbox.Metrics = (*PrometheusMetrics)(nil)
