// Package queue provides delivery queues for mailboxes.
//
// Serial runs submitted work on a single worker goroutine in submission
// order. It never blocks the submitter, so a notifier raising changes on a
// hot path only pays for an append. Inline runs work immediately on the
// submitting goroutine.
//
//	q := queue.NewSerial("ui", queue.WithLogger(logger))
//	defer q.Close()
//
//	mb := mailbox.NewWithConfig(view, mailbox.Config{MessageQueue: q})
package queue
