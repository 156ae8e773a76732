package mailbox

import (
	"errors"
	"fmt"
	"strings"
)

// Subscription rejection reasons. They are reported to the trace log and
// the debug logger; callers only ever observe a false return.
var (
	ErrNilNotifier           = errors.New("notifier is nil or not comparable")
	ErrEmptyKey              = errors.New("key is empty")
	ErrDuplicateSubscription = errors.New("subscription already exists")
	ErrInvalidDestination    = errors.New("invalid destination")
	ErrNotSubscribed         = errors.New("subscription not found")
	ErrClosed                = errors.New("mailbox is closed")
)

// Kind identifies the type of change a Message describes.
type Kind uint8

const (
	// KindSetting indicates the value of the key was replaced.
	KindSetting Kind = iota + 1

	// KindInsertion indicates elements were inserted into a list value.
	KindInsertion

	// KindRemoval indicates elements were removed from a list value.
	KindRemoval

	// KindReplacement indicates elements of a list value were replaced.
	KindReplacement
)

// String returns a human-readable change kind name.
func (k Kind) String() string {
	switch k {
	case KindSetting:
		return "SETTING"
	case KindInsertion:
		return "INSERTION"
	case KindRemoval:
		return "REMOVAL"
	case KindReplacement:
		return "REPLACEMENT"
	default:
		return "UNKNOWN"
	}
}

// Options is a bitmask of observation options for a subscription.
type Options uint8

const (
	// OptionNew includes the new value in change messages.
	OptionNew Options = 1 << iota

	// OptionOld includes the old value in change messages.
	OptionOld

	// OptionInitial sends a message immediately when subscribing.
	OptionInitial

	// OptionPrior sends an extra message before each change.
	OptionPrior
)

var optionNames = []struct {
	opt  Options
	name string
}{
	{OptionNew, "NEW"},
	{OptionOld, "OLD"},
	{OptionInitial, "INITIAL"},
	{OptionPrior, "PRIOR"},
}

// Has reports whether all bits of flag are set.
func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

// String returns the set flags joined by "|", or "NONE".
func (o Options) String() string {
	if o == 0 {
		return "NONE"
	}
	parts := make([]string, 0, len(optionNames))
	for _, n := range optionNames {
		if o.Has(n.opt) {
			parts = append(parts, n.name)
		}
	}
	if rest := o &^ (OptionNew | OptionOld | OptionInitial | OptionPrior); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseOptions parses flag names separated by "|" or "," (case-insensitive).
// The empty string and "none" yield no options.
func ParseOptions(s string) (Options, error) {
	var opts Options
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		field = strings.ToUpper(strings.TrimSpace(field))
		if field == "" || field == "NONE" {
			continue
		}
		found := false
		for _, n := range optionNames {
			if n.name == field {
				opts |= n.opt
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid option: %s (must be new, old, initial, or prior)", field)
		}
	}
	return opts, nil
}

// NullValue is the type of Null.
type NullValue struct{}

// Null is the marker a Notifier places in Change.Old or Change.New when the
// value exists but is nil. Messages never expose it.
var Null = NullValue{}

// Change is the raw payload a Notifier hands to its observers.
// Old and New are nil when the subscription did not ask for them.
type Change struct {
	Kind    Kind
	Old     any
	New     any
	Indexes []int

	// IsPrior is set on the notification sent before the change happens.
	IsPrior bool
}

// Observer receives raw change events from a Notifier.
type Observer interface {
	// ObserveValue is called for every change of a registered key, on
	// whatever goroutine made the change.
	ObserveValue(notifier Notifier, key string, change Change)
}

// Notifier is an object whose keyed values can be observed.
//
// Implementations are not required to tolerate concurrent AddObserver and
// RemoveObserver calls; mailboxes serialize them.
type Notifier interface {
	AddObserver(observer Observer, key string, options Options)
	RemoveObserver(observer Observer, key string)
}

// DeliveryQueue executes units of work in the order they were submitted.
type DeliveryQueue interface {
	Submit(work func())
}

// ContextObserver is implemented by subscribers using SubscribeContext.
type ContextObserver interface {
	ObserveContext(userContext any, msg *Message)
}

// DropReason describes why a raw change was not delivered.
type DropReason string

const (
	// DropUnsubscribed means the subscription was removed before dispatch.
	DropUnsubscribed DropReason = "unsubscribed"

	// DropSubscriberGone means the subscriber was garbage collected.
	DropSubscriberGone DropReason = "subscriber-gone"
)
