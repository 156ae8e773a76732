// Package commands implements the mailbox-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mailbox-go/mailbox-go/pkg/log"
)

// timestampLayout is used by view and export.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category  *log.Category
	MailboxID string
	Key       string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		MailboxID: f.MailboxID,
		Category:  f.Category,
		Key:       f.Key,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [mbox:id] CATEGORY label key
	ts := event.Timestamp.UTC().Format(timestampLayout)

	fmt.Fprintf(w, "%s [mbox:%s] %-12s %s", ts, shortenID(event.MailboxID), event.Category.String(), eventLabel(event))
	if event.Key != "" {
		fmt.Fprintf(w, " %q", event.Key)
	}
	fmt.Fprintln(w)

	if event.SubscriberType != "" {
		fmt.Fprintf(w, "  Subscriber: %s\n", event.SubscriberType)
	}
	if event.NotifierType != "" {
		fmt.Fprintf(w, "  Notifier: %s\n", event.NotifierType)
	}

	switch {
	case event.Subscription != nil:
		formatSubscriptionDetails(w, event.Subscription)
	case event.Delivery != nil:
		formatDeliveryDetails(w, event.Delivery)
	case event.Drop != nil:
		fmt.Fprintf(w, "  Reason: %s\n", event.Drop.Reason)
	case event.Lifecycle != nil:
		if event.Lifecycle.Subscriptions > 0 {
			fmt.Fprintf(w, "  Subscriptions: %d\n", event.Lifecycle.Subscriptions)
		}
	}

	fmt.Fprintln(w)
}

// eventLabel names the payload of an event.
func eventLabel(event log.Event) string {
	switch {
	case event.Subscription != nil:
		return event.Subscription.Action.String()
	case event.Delivery != nil:
		return event.Delivery.Kind
	case event.Drop != nil:
		return "Drop"
	case event.Lifecycle != nil:
		return event.Lifecycle.State.String()
	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of a mailbox ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatSubscriptionDetails(w io.Writer, sub *log.SubscriptionEvent) {
	if sub.Destination != "" {
		fmt.Fprintf(w, "  Destination: %s\n", sub.Destination)
	}
	if sub.Options != "" {
		fmt.Fprintf(w, "  Options: %s\n", sub.Options)
	}
	if sub.Removed > 0 {
		fmt.Fprintf(w, "  Removed: %d\n", sub.Removed)
	}
	if sub.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sub.Reason)
	}
}

func formatDeliveryDetails(w io.Writer, d *log.DeliveryEvent) {
	fmt.Fprintf(w, "  Destination: %s", d.Destination)
	if d.Queued {
		fmt.Fprint(w, " (queued)")
	}
	fmt.Fprintln(w)

	var flags []string
	if d.PriorToChange {
		flags = append(flags, "prior")
	}
	if d.HasOld {
		flags = append(flags, "old")
	}
	if d.HasNew {
		flags = append(flags, "new")
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "  Carries: %s\n", strings.Join(flags, ","))
	}
	if len(d.Indexes) > 0 {
		fmt.Fprintf(w, "  Indexes: %v\n", d.Indexes)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(s)
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be subscription, delivery, drop, or lifecycle)", s)
	}
	return c, nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
