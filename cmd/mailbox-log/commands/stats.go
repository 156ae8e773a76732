package commands

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/mailbox-go/mailbox-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Subscriptions    map[log.SubscriptionAction]int
	Deliveries       map[string]int
	QueuedDeliveries int
	Drops            map[string]int
	Mailboxes        map[string]*MailboxStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// MailboxStats holds statistics for a single mailbox.
type MailboxStats struct {
	FirstSeen      time.Time
	LastSeen       time.Time
	Events         int
	SubscriberType string
	Keys           map[string]struct{}
	Deliveries     int
	Drops          int
	FinalState     string
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		Subscriptions:    make(map[log.SubscriptionAction]int),
		Deliveries:       make(map[string]int),
		Drops:            make(map[string]int),
		Mailboxes:        make(map[string]*MailboxStats),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	mb, ok := s.Mailboxes[event.MailboxID]
	if !ok {
		mb = &MailboxStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
			Keys:      make(map[string]struct{}),
		}
		s.Mailboxes[event.MailboxID] = mb
	}
	mb.Events++
	if event.Timestamp.After(mb.LastSeen) {
		mb.LastSeen = event.Timestamp
	}
	if event.SubscriberType != "" && mb.SubscriberType == "" {
		mb.SubscriberType = event.SubscriberType
	}
	if event.Key != "" {
		mb.Keys[event.Key] = struct{}{}
	}

	switch {
	case event.Subscription != nil:
		s.Subscriptions[event.Subscription.Action]++
	case event.Delivery != nil:
		s.Deliveries[event.Delivery.Kind]++
		if event.Delivery.Queued {
			s.QueuedDeliveries++
		}
		mb.Deliveries++
	case event.Drop != nil:
		s.Drops[event.Drop.Reason]++
		mb.Drops++
	case event.Lifecycle != nil:
		mb.FinalState = event.Lifecycle.State.String()
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Mailbox Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategorySubscription, log.CategoryDelivery, log.CategoryDrop, log.CategoryLifecycle} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Subscriptions) > 0 {
		fmt.Fprintln(w, "Subscriptions:")
		for _, action := range []log.SubscriptionAction{log.ActionSubscribe, log.ActionUnsubscribe, log.ActionReject} {
			if count := stats.Subscriptions[action]; count > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", action.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	if len(stats.Deliveries) > 0 {
		fmt.Fprintf(w, "Deliveries (%d queued):\n", stats.QueuedDeliveries)
		printCounts(w, stats.Deliveries)
		fmt.Fprintln(w)
	}

	if len(stats.Drops) > 0 {
		fmt.Fprintln(w, "Drops:")
		printCounts(w, stats.Drops)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Mailboxes: %d\n", len(stats.Mailboxes))
	if len(stats.Mailboxes) == 0 {
		return
	}

	type mailboxInfo struct {
		id    string
		stats *MailboxStats
	}
	mailboxes := make([]mailboxInfo, 0, len(stats.Mailboxes))
	for id, ms := range stats.Mailboxes {
		mailboxes = append(mailboxes, mailboxInfo{id, ms})
	}
	sort.Slice(mailboxes, func(i, j int) bool {
		return mailboxes[i].stats.FirstSeen.Before(mailboxes[j].stats.FirstSeen)
	})

	fmt.Fprintln(w)
	for _, m := range mailboxes {
		fmt.Fprintf(w, "  [%s] %d events, %d deliveries, %d drops\n",
			shortenID(m.id), m.stats.Events, m.stats.Deliveries, m.stats.Drops)
		if m.stats.SubscriberType != "" {
			fmt.Fprintf(w, "             Subscriber: %s\n", m.stats.SubscriberType)
		}
		if len(m.stats.Keys) > 0 {
			fmt.Fprintf(w, "             Keys: %v\n", slices.Sorted(maps.Keys(m.stats.Keys)))
		}
		if m.stats.FinalState != "" {
			fmt.Fprintf(w, "             State: %s\n", m.stats.FinalState)
		}
	}
}

// printCounts writes name: count lines sorted by name.
func printCounts(w io.Writer, counts map[string]int) {
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(w, "  %-14s %d\n", name+":", counts[name])
	}
}
