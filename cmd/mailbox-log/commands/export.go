package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mailbox-go/mailbox-go/pkg/log"
)

// csvHeader lists the export columns.
var csvHeader = []string{"timestamp", "mailbox_id", "category", "subscriber", "notifier", "key", "event", "destination", "detail"}

// RunExport exports the log file to the specified format. An empty output
// path writes to stdout.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export(reader, format, w)
}

func export(reader *log.Reader, format string, w io.Writer) error {
	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var destination, detail string
		switch {
		case event.Subscription != nil:
			destination = event.Subscription.Destination
			detail = event.Subscription.Reason
			if event.Subscription.Removed > 0 {
				detail = strconv.Itoa(event.Subscription.Removed)
			}
		case event.Delivery != nil:
			destination = event.Delivery.Destination
			if event.Delivery.Queued {
				detail = "queued"
			}
		case event.Drop != nil:
			detail = event.Drop.Reason
		case event.Lifecycle != nil:
			detail = strconv.Itoa(event.Lifecycle.Subscriptions)
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampLayout),
			event.MailboxID,
			event.Category.String(),
			event.SubscriberType,
			event.NotifierType,
			event.Key,
			eventLabel(event),
			destination,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}
