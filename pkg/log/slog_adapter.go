package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("mailbox_id", event.MailboxID),
		slog.String("category", event.Category.String()),
	}

	if event.SubscriberType != "" {
		attrs = append(attrs, slog.String("subscriber", event.SubscriberType))
	}
	if event.NotifierType != "" {
		attrs = append(attrs, slog.String("notifier", event.NotifierType))
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}

	switch {
	case event.Subscription != nil:
		s := event.Subscription
		attrs = append(attrs, slog.String("action", s.Action.String()))
		if s.Options != "" {
			attrs = append(attrs, slog.String("options", s.Options))
		}
		if s.Destination != "" {
			attrs = append(attrs, slog.String("destination", s.Destination))
		}
		if s.Reason != "" {
			attrs = append(attrs, slog.String("reason", s.Reason))
		}
		if s.Removed > 0 {
			attrs = append(attrs, slog.Int("removed", s.Removed))
		}
	case event.Delivery != nil:
		d := event.Delivery
		attrs = append(attrs,
			slog.String("kind", d.Kind),
			slog.String("destination", d.Destination),
			slog.Bool("queued", d.Queued),
		)
		if d.PriorToChange {
			attrs = append(attrs, slog.Bool("prior", true))
		}
		if len(d.Indexes) > 0 {
			attrs = append(attrs, slog.Any("indexes", d.Indexes))
		}
	case event.Drop != nil:
		attrs = append(attrs, slog.String("reason", event.Drop.Reason))
	case event.Lifecycle != nil:
		attrs = append(attrs, slog.String("state", event.Lifecycle.State.String()))
		if event.Lifecycle.Subscriptions > 0 {
			attrs = append(attrs, slog.Int("subscriptions", event.Lifecycle.Subscriptions))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "mailbox", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
