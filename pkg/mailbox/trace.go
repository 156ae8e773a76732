package mailbox

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mailbox-go/mailbox-go/pkg/log"
)

func lifecycleEvent(id string, state log.LifecycleState, subscriptions int) log.Event {
	return log.Event{
		Timestamp: time.Now(),
		MailboxID: id,
		Category:  log.CategoryLifecycle,
		Lifecycle: &log.LifecycleEvent{
			State:         state,
			Subscriptions: subscriptions,
		},
	}
}

func (m *Mailbox[S]) baseEvent(category log.Category, notifier Notifier, key string) log.Event {
	e := log.Event{
		Timestamp:      time.Now(),
		MailboxID:      m.id,
		Category:       category,
		SubscriberType: reflect.TypeFor[S]().String(),
		Key:            key,
	}
	if notifier != nil {
		e.NotifierType = fmt.Sprintf("%T", notifier)
	}
	return e
}

func (m *Mailbox[S]) subscriptionEvent(action log.SubscriptionAction, notifier Notifier, key string, options Options, destination string, reason error, removed int) log.Event {
	e := m.baseEvent(log.CategorySubscription, notifier, key)
	e.Subscription = &log.SubscriptionEvent{
		Action:      action,
		Destination: destination,
		Removed:     removed,
	}
	if action != log.ActionUnsubscribe {
		e.Subscription.Options = options.String()
	}
	if reason != nil {
		e.Subscription.Reason = reason.Error()
	}
	return e
}

func (m *Mailbox[S]) deliveryEvent(msg *Message, kind destinationKind, queued bool) log.Event {
	e := m.baseEvent(log.CategoryDelivery, msg.Notifier(), msg.Key())
	e.Delivery = &log.DeliveryEvent{
		Kind:          msg.Kind().String(),
		Destination:   kind.String(),
		Queued:        queued,
		PriorToChange: msg.IsPriorToChange(),
		Indexes:       msg.indexes,
		HasOld:        msg.hasOld,
		HasNew:        msg.hasNew,
	}
	return e
}

func (m *Mailbox[S]) dropEvent(msg *Message, reason DropReason) log.Event {
	e := m.baseEvent(log.CategoryDrop, msg.Notifier(), msg.Key())
	e.Drop = &log.DropEvent{Reason: string(reason)}
	return e
}
