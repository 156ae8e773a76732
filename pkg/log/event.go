package log

import (
	"strings"
	"time"
)

// Event represents one mailbox trace record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// MailboxID identifies the mailbox (UUID).
	MailboxID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// SubscriberType is the Go type of the mailbox subscriber.
	SubscriberType string `cbor:"4,keyasint,omitempty"`

	// NotifierType is the Go type of the notifier, if any.
	NotifierType string `cbor:"5,keyasint,omitempty"`

	// Key is the observed key, if any.
	Key string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Subscription *SubscriptionEvent `cbor:"10,keyasint,omitempty"`
	Delivery     *DeliveryEvent     `cbor:"11,keyasint,omitempty"`
	Drop         *DropEvent         `cbor:"12,keyasint,omitempty"`
	Lifecycle    *LifecycleEvent    `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySubscription indicates a subscribe, unsubscribe or rejection.
	CategorySubscription Category = 0
	// CategoryDelivery indicates a message handed to a destination.
	CategoryDelivery Category = 1
	// CategoryDrop indicates a change that was not delivered.
	CategoryDrop Category = 2
	// CategoryLifecycle indicates a mailbox was opened, closed or collected.
	CategoryLifecycle Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryDelivery:
		return "DELIVERY"
	case CategoryDrop:
		return "DROP"
	case CategoryLifecycle:
		return "LIFECYCLE"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name as printed by String (case-insensitive).
func ParseCategory(s string) (Category, bool) {
	for c := CategorySubscription; c <= CategoryLifecycle; c++ {
		if strings.EqualFold(c.String(), s) {
			return c, true
		}
	}
	return 0, false
}

// SubscriptionAction is what happened to a subscription.
type SubscriptionAction uint8

const (
	// ActionSubscribe indicates a subscription was created.
	ActionSubscribe SubscriptionAction = 0
	// ActionUnsubscribe indicates one or more subscriptions were removed.
	ActionUnsubscribe SubscriptionAction = 1
	// ActionReject indicates a subscribe call was refused.
	ActionReject SubscriptionAction = 2
)

// String returns the action name.
func (a SubscriptionAction) String() string {
	switch a {
	case ActionSubscribe:
		return "SUBSCRIBE"
	case ActionUnsubscribe:
		return "UNSUBSCRIBE"
	case ActionReject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// SubscriptionEvent captures subscription changes.
type SubscriptionEvent struct {
	Action      SubscriptionAction `cbor:"1,keyasint"`
	Options     string             `cbor:"2,keyasint,omitempty"`
	Destination string             `cbor:"3,keyasint,omitempty"`
	Reason      string             `cbor:"4,keyasint,omitempty"`
	Removed     int                `cbor:"5,keyasint,omitempty"`
}

// DeliveryEvent captures a message handed to a destination.
type DeliveryEvent struct {
	Kind          string `cbor:"1,keyasint"`
	Destination   string `cbor:"2,keyasint"`
	Queued        bool   `cbor:"3,keyasint,omitempty"`
	PriorToChange bool   `cbor:"4,keyasint,omitempty"`
	Indexes       []int  `cbor:"5,keyasint,omitempty"`
	HasOld        bool   `cbor:"6,keyasint,omitempty"`
	HasNew        bool   `cbor:"7,keyasint,omitempty"`
}

// DropEvent captures a change that was not delivered.
type DropEvent struct {
	Reason string `cbor:"1,keyasint"`
}

// LifecycleState is a mailbox lifecycle transition.
type LifecycleState uint8

const (
	// LifecycleOpened indicates the mailbox was created.
	LifecycleOpened LifecycleState = 0
	// LifecycleClosed indicates Close was called.
	LifecycleClosed LifecycleState = 1
	// LifecycleCollected indicates the mailbox was garbage collected
	// without Close.
	LifecycleCollected LifecycleState = 2
)

// String returns the state name.
func (s LifecycleState) String() string {
	switch s {
	case LifecycleOpened:
		return "OPENED"
	case LifecycleClosed:
		return "CLOSED"
	case LifecycleCollected:
		return "COLLECTED"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEvent captures a mailbox lifecycle transition.
type LifecycleEvent struct {
	State LifecycleState `cbor:"1,keyasint"`

	// Subscriptions removed by the transition.
	Subscriptions int `cbor:"2,keyasint,omitempty"`
}
