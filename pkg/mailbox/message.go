package mailbox

import (
	"fmt"
	"slices"
	"strings"
)

// Message is an immutable snapshot of a single change notification.
//
// Which values are present depends on the options the subscription was
// created with.
//
// A Message holds its notifier strongly, so a retained Message keeps the
// notifier reachable. Keep the key and values instead if the message must
// outlive the notifier.
type Message struct {
	notifier Notifier
	key      string
	kind     Kind

	oldValue any
	hasOld   bool
	newValue any
	hasNew   bool

	indexes []int
	prior   bool
}

// NewMessage builds a Message from a raw change. Null markers in the old or
// new value are converted into absent values. Indexes are copied, sorted and
// deduplicated. A zero Kind is treated as KindSetting.
func NewMessage(notifier Notifier, key string, change Change) *Message {
	m := &Message{
		notifier: notifier,
		key:      key,
		kind:     change.Kind,
		prior:    change.IsPrior,
	}
	if m.kind == 0 {
		m.kind = KindSetting
	}

	m.oldValue, m.hasOld = normalize(change.Old)
	m.newValue, m.hasNew = normalize(change.New)

	if len(change.Indexes) > 0 {
		m.indexes = slices.Clone(change.Indexes)
		slices.Sort(m.indexes)
		m.indexes = slices.Compact(m.indexes)
	}

	return m
}

func normalize(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.(NullValue); ok {
		return nil, false
	}
	return v, true
}

// Notifier returns the object that posted the change.
func (m *Message) Notifier() Notifier { return m.notifier }

// Key returns the key that changed.
func (m *Message) Key() string { return m.key }

// Kind returns the type of change.
func (m *Message) Kind() Kind { return m.kind }

// OldValue returns the previous value, if present and subscribed for.
func (m *Message) OldValue() (any, bool) { return m.oldValue, m.hasOld }

// NewValue returns the new value, if present and subscribed for.
func (m *Message) NewValue() (any, bool) { return m.newValue, m.hasNew }

// Indexes returns the affected list indexes in ascending order, or nil for
// KindSetting changes. The returned slice is a copy.
func (m *Message) Indexes() []int { return slices.Clone(m.indexes) }

// IsPriorToChange reports whether the message was posted before the change
// happened. Only subscriptions with OptionPrior receive such messages.
func (m *Message) IsPriorToChange() bool { return m.prior }

// String returns a compact description for debugging.
func (m *Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", m.key, m.kind)
	if m.prior {
		b.WriteString(" prior")
	}
	if m.hasOld {
		fmt.Fprintf(&b, " old=%v", m.oldValue)
	}
	if m.hasNew {
		fmt.Fprintf(&b, " new=%v", m.newValue)
	}
	if len(m.indexes) > 0 {
		fmt.Fprintf(&b, " indexes=%v", m.indexes)
	}
	return b.String()
}
