// Package log provides structured trace logging for mailboxes.
//
// This package defines the Logger interface and Event types for capturing
// every subscription change, delivery and drop a mailbox performs. It is
// separate from operational logging (slog): the trace is a complete
// machine-readable record for debugging notification flows.
//
// # Basic Usage
//
// Mailboxes are configured with a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.TraceLogger = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to a binary file
//	cfg.TraceLogger, _ = log.NewFileLogger("/tmp/app.mblog")
//
//	// Both: use MultiLogger
//	cfg.TraceLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every Event carries the mailbox ID and one payload:
//   - Subscription: subscribe, unsubscribe and rejected subscribe calls
//   - Delivery: a message handed to a destination
//   - Drop: a change that arrived after unsubscribe or after the subscriber
//     was collected
//   - Lifecycle: mailbox opened, closed or collected
//
// # File Format
//
// Trace files are a CBOR sequence with the .mblog extension. The
// mailbox-log CLI provides viewing, filtering, export and statistics.
package log
