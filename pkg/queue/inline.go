package queue

import "github.com/mailbox-go/mailbox-go/pkg/mailbox"

// Inline runs work immediately on the submitting goroutine.
// The zero value is ready to use.
type Inline struct{}

// Submit runs work.
func (Inline) Submit(work func()) {
	if work != nil {
		work()
	}
}

// Compile-time interface satisfaction check.
var _ mailbox.DeliveryQueue = Inline{}
