package mailbox

import (
	"log/slog"

	"github.com/mailbox-go/mailbox-go/pkg/log"
)

// Config holds mailbox configuration.
type Config struct {
	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// TraceLogger receives subscription, delivery and drop events.
	// If nil, tracing is disabled.
	TraceLogger log.Logger

	// Metrics receives subscription and delivery counters.
	// If nil, metrics are not recorded.
	Metrics Metrics

	// MessageQueue is the initial delivery queue. If nil, messages are
	// delivered synchronously. It can be changed later with SetMessageQueue.
	MessageQueue DeliveryQueue
}

// DefaultConfig returns the default mailbox configuration: no logging, no
// tracing, synchronous delivery.
func DefaultConfig() Config {
	return Config{}
}

// Metrics records mailbox activity. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// ObserveSubscribe records a subscribe call and whether it succeeded.
	ObserveSubscribe(destination string, accepted bool)

	// ObserveUnsubscribe records removed subscriptions.
	ObserveUnsubscribe(removed int)

	// ObserveDelivery records a message handed to a destination.
	ObserveDelivery(kind Kind, queued bool)

	// ObserveDrop records a change that was not delivered.
	ObserveDrop(reason DropReason)

	// SetActiveSubscriptions reports the process-wide subscription count.
	SetActiveSubscriptions(count int)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObserveSubscribe(string, bool) {}
func (NoopMetrics) ObserveUnsubscribe(int)        {}
func (NoopMetrics) ObserveDelivery(Kind, bool)    {}
func (NoopMetrics) ObserveDrop(DropReason)        {}
func (NoopMetrics) SetActiveSubscriptions(int)    {}

// Compile-time interface satisfaction check.
var _ Metrics = NoopMetrics{}
