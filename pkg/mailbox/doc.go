// Package mailbox mediates property-change notifications between notifiers
// and a subscriber.
//
// A Mailbox is created for a single subscriber, which it references weakly.
// Subscriptions are then added for (notifier, key) pairs. The mailbox
// registers itself with the notifier, turns every raw change into an
// immutable Message and routes it to the destination chosen at subscribe
// time. While a subscription exists the notifier is held strongly; removing
// the subscription releases it.
//
// # Registry
//
// All registration traffic from every mailbox in the process goes through a
// single shared registry guarded by one mutex. Notifier registration
// primitives are not safe under concurrent add/remove calls, so the lock
// spans both the table mutation and the AddObserver/RemoveObserver call. The
// lock is never held while a destination runs.
//
// # Destinations
//
// Three destination shapes exist, validated once when subscribing:
//   - a closure receiving the Message (Subscribe)
//   - a method on the subscriber, looked up by name, taking no arguments or
//     a single *Message (SubscribeMethod)
//   - an opaque context value handed to the subscriber's ContextObserver
//     implementation together with the Message (SubscribeContext)
//
// # Delivery
//
// Without a message queue, destinations run synchronously on the goroutine
// that raised the change. When a DeliveryQueue is set, each delivery is
// submitted as one unit of work. The queue setting is read at every dispatch,
// so changing it affects all later deliveries of all subscriptions but never
// one already submitted.
//
// Deliveries for one subscription happen in the order the changes were
// raised. Nothing is guaranteed across subscriptions.
//
// # Lifecycle
//
// Only one subscription may exist per (mailbox, notifier, key); a second
// subscribe call for the same pair returns false, as does any call with
// invalid arguments. Close removes every subscription; it should be
// deferred by the owner. A mailbox that becomes unreachable without Close
// has its registrations removed by a runtime cleanup.
//
// Because the subscriber is referenced weakly, it typically owns its
// mailbox. Closures passed to Subscribe should not capture the mailbox or the
// subscriber, otherwise neither can be collected until the subscription is
// removed.
package mailbox
