package mailbox

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	"github.com/mailbox-go/mailbox-go/pkg/log"
)

// Mailbox maintains the subscriptions of a single subscriber of type S.
// It is safe for concurrent use.
type Mailbox[S any] struct {
	id         string
	subscriber weak.Pointer[S]

	registry *registry
	relay    *relay[S]

	logger  *slog.Logger
	trace   log.Logger
	tracing bool
	metrics Metrics

	// Current delivery queue, read at every dispatch.
	queue atomic.Pointer[queueRef]

	mu     sync.RWMutex
	routes map[entryKey]*route[S]
	closed bool

	closeOnce sync.Once
	cleanup   runtime.Cleanup
}

// queueRef boxes a DeliveryQueue so it can be swapped atomically.
type queueRef struct {
	q DeliveryQueue
}

// relay is the Observer registered with notifiers on behalf of a mailbox.
// It references the mailbox weakly so an abandoned mailbox can be collected
// while its registrations still exist.
type relay[S any] struct {
	mailbox  weak.Pointer[Mailbox[S]]
	registry *registry
}

// ObserveValue forwards a raw change to the mailbox, if it still exists.
func (r *relay[S]) ObserveValue(notifier Notifier, key string, change Change) {
	if m := r.mailbox.Value(); m != nil {
		m.dispatch(notifier, key, change)
	}
}

// route is the mailbox side of a subscription.
type route[S any] struct {
	dest destination[S]

	mu sync.Mutex
	// ready is false until the registration call has returned. Messages
	// raised before that are parked in backlog.
	ready   bool
	backlog []*Message
}

// park holds msg back if the route is still being registered.
func (r *route[S]) park(msg *Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return false
	}
	r.backlog = append(r.backlog, msg)
	return true
}

// activate delivers parked messages in order and marks the route ready.
func (r *route[S]) activate(deliver func(*Message)) {
	for {
		pending := r.takeBacklog()
		if len(pending) == 0 {
			return
		}
		for _, msg := range pending {
			deliver(msg)
		}
	}
}

// takeBacklog empties the backlog. The route becomes ready once there is
// nothing left to take.
func (r *route[S]) takeBacklog() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := r.backlog
	r.backlog = nil
	if len(pending) == 0 {
		r.ready = true
	}
	return pending
}

// New creates a mailbox for subscriber with the default configuration.
func New[S any](subscriber *S) *Mailbox[S] {
	return NewWithConfig(subscriber, DefaultConfig())
}

// NewWithConfig creates a mailbox for subscriber with a custom configuration.
// The subscriber is referenced weakly; once it is collected, messages are
// dropped.
func NewWithConfig[S any](subscriber *S, config Config) *Mailbox[S] {
	return newMailbox(subscriber, config, sharedRegistry)
}

func newMailbox[S any](subscriber *S, config Config, reg *registry) *Mailbox[S] {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	_, noop := config.TraceLogger.(log.NoopLogger)
	tracing := config.TraceLogger != nil && !noop
	if !tracing {
		config.TraceLogger = log.NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = NoopMetrics{}
	}

	m := &Mailbox[S]{
		id:         uuid.NewString(),
		subscriber: weak.Make(subscriber),
		registry:   reg,
		trace:      config.TraceLogger,
		tracing:    tracing,
		metrics:    config.Metrics,
		routes:     make(map[entryKey]*route[S]),
	}
	m.logger = config.Logger.With("mailbox", m.id)
	m.relay = &relay[S]{mailbox: weak.Make(m), registry: reg}
	if config.MessageQueue != nil {
		m.queue.Store(&queueRef{q: config.MessageQueue})
	}

	// Registrations of a mailbox dropped without Close are removed here.
	logger, trace, metrics, id := m.logger, m.trace, m.metrics, m.id
	m.cleanup = runtime.AddCleanup(m, func(r *relay[S]) {
		removed := r.registry.unregisterAll(r)
		if len(removed) > 0 {
			logger.Debug("mailbox collected with active subscriptions", "removed", len(removed))
			metrics.ObserveUnsubscribe(len(removed))
			metrics.SetActiveSubscriptions(r.registry.total())
		}
		trace.Log(lifecycleEvent(id, log.LifecycleCollected, len(removed)))
	}, m.relay)

	m.trace.Log(lifecycleEvent(m.id, log.LifecycleOpened, 0))
	return m
}

// ID returns the unique mailbox identifier.
func (m *Mailbox[S]) ID() string {
	return m.id
}

// Subscriber returns the subscriber, or nil if it has been collected.
func (m *Mailbox[S]) Subscriber() *S {
	return m.subscriber.Value()
}

// MessageQueue returns the current delivery queue, or nil for synchronous
// delivery.
func (m *Mailbox[S]) MessageQueue() DeliveryQueue {
	if ref := m.queue.Load(); ref != nil {
		return ref.q
	}
	return nil
}

// SetMessageQueue changes the delivery queue for all subscriptions. Messages
// already submitted to the previous queue are unaffected. Pass nil to deliver
// synchronously.
func (m *Mailbox[S]) SetMessageQueue(q DeliveryQueue) {
	if q == nil {
		m.queue.Store(nil)
		return
	}
	m.queue.Store(&queueRef{q: q})
}

// Subscribe adds a subscription that passes every message to fn.
// It returns false if notifier is nil, key is empty, fn is nil, or a
// subscription for (notifier, key) already exists.
func (m *Mailbox[S]) Subscribe(notifier Notifier, key string, options Options, fn func(*Message)) bool {
	dest, ok := closureDestination[S](fn)
	return m.subscribe(notifier, key, options, dest, ok)
}

// SubscribeMethod adds a subscription that calls the subscriber's exported
// method called name. The method must take no arguments or a single
// *Message; its results are ignored. It returns false if the method does not
// exist or has another signature, and in the same cases as Subscribe.
func (m *Mailbox[S]) SubscribeMethod(notifier Notifier, key string, options Options, name string) bool {
	dest, ok := methodDestination[S](name)
	return m.subscribe(notifier, key, options, dest, ok)
}

// SubscribeContext adds a subscription that calls the subscriber's
// ObserveContext method with userContext and each message. It returns false
// if *S does not implement ContextObserver, and in the same cases as
// Subscribe. userContext may be nil.
func (m *Mailbox[S]) SubscribeContext(notifier Notifier, key string, options Options, userContext any) bool {
	dest, ok := contextDestination[S](userContext)
	return m.subscribe(notifier, key, options, dest, ok)
}

func (m *Mailbox[S]) subscribe(notifier Notifier, key string, options Options, dest destination[S], destOK bool) bool {
	switch {
	case !validNotifier(notifier):
		return m.reject(notifier, key, options, dest.kind, ErrNilNotifier)
	case key == "":
		return m.reject(notifier, key, options, dest.kind, ErrEmptyKey)
	case !destOK:
		return m.reject(notifier, key, options, dest.kind, ErrInvalidDestination)
	}

	ek := entryKey{notifier: notifier, key: key}
	r := &route[S]{dest: dest}

	// Install the route before registering so initial notifications raised
	// inside AddObserver find it.
	if err := m.installRoute(ek, r); err != nil {
		return m.reject(notifier, key, options, dest.kind, err)
	}

	// The route must not outlive a failed registration, including one that
	// panics inside AddObserver.
	registered := false
	defer func() {
		if !registered {
			m.removeRoute(ek, r)
		}
	}()

	if !m.registry.register(m.relay, notifier, key, options) {
		return m.reject(notifier, key, options, dest.kind, ErrDuplicateSubscription)
	}

	// Close may have run between the closed check and the registration.
	if m.isClosed() {
		m.registry.unregister(m.relay, notifier, key)
		return m.reject(notifier, key, options, dest.kind, ErrClosed)
	}
	registered = true

	r.activate(func(msg *Message) { m.deliver(r, msg) })

	m.metrics.ObserveSubscribe(dest.kind.String(), true)
	m.metrics.SetActiveSubscriptions(m.registry.total())
	if m.tracing {
		m.trace.Log(m.subscriptionEvent(log.ActionSubscribe, notifier, key, options, dest.kind.String(), nil, 1))
	}
	m.logger.Debug("subscribed", "key", key, "options", options, "destination", dest.kind)
	return true
}

func (m *Mailbox[S]) reject(notifier Notifier, key string, options Options, kind destinationKind, reason error) bool {
	m.metrics.ObserveSubscribe(kind.String(), false)
	if m.tracing {
		m.trace.Log(m.subscriptionEvent(log.ActionReject, notifier, key, options, kind.String(), reason, 0))
	}
	m.logger.Debug("subscription rejected", "key", key, "destination", kind, "reason", reason)
	return false
}

// installRoute adds r for ek unless the mailbox is closed or ek is taken.
func (m *Mailbox[S]) installRoute(ek entryKey, r *route[S]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, exists := m.routes[ek]; exists {
		return ErrDuplicateSubscription
	}
	m.routes[ek] = r
	return nil
}

// removeRoute deletes the route for ek if it is still r.
func (m *Mailbox[S]) removeRoute(ek entryKey, r *route[S]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.routes[ek] == r {
		delete(m.routes, ek)
	}
}

// removeRoutes deletes the routes for every key in eks.
func (m *Mailbox[S]) removeRoutes(eks ...entryKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ek := range eks {
		delete(m.routes, ek)
	}
}

func (m *Mailbox[S]) lookupRoute(ek entryKey) *route[S] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.routes[ek]
}

func (m *Mailbox[S]) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Mailbox[S]) markClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Unsubscribe removes the subscription for (notifier, key). It returns false
// if no such subscription exists.
func (m *Mailbox[S]) Unsubscribe(notifier Notifier, key string) bool {
	if !m.registry.unregister(m.relay, notifier, key) {
		m.logger.Debug("unsubscribe ignored", "key", key, "reason", ErrNotSubscribed)
		return false
	}

	m.removeRoutes(entryKey{notifier: notifier, key: key})
	m.unsubscribed(notifier, key, 1)
	return true
}

// UnsubscribeNotifier removes every subscription to notifier. It returns
// false if there were none.
func (m *Mailbox[S]) UnsubscribeNotifier(notifier Notifier) bool {
	keys := m.registry.unregisterNotifier(m.relay, notifier)
	if len(keys) == 0 {
		m.logger.Debug("unsubscribe ignored", "reason", ErrNotSubscribed)
		return false
	}

	eks := make([]entryKey, len(keys))
	for i, key := range keys {
		eks[i] = entryKey{notifier: notifier, key: key}
	}
	m.removeRoutes(eks...)
	m.unsubscribed(notifier, "", len(keys))
	return true
}

// UnsubscribeAll removes every subscription of the mailbox.
func (m *Mailbox[S]) UnsubscribeAll() {
	removed := m.registry.unregisterAll(m.relay)
	if len(removed) == 0 {
		return
	}

	m.removeRoutes(removed...)
	m.unsubscribed(nil, "", len(removed))
}

func (m *Mailbox[S]) unsubscribed(notifier Notifier, key string, removed int) {
	m.metrics.ObserveUnsubscribe(removed)
	m.metrics.SetActiveSubscriptions(m.registry.total())
	if m.tracing {
		m.trace.Log(m.subscriptionEvent(log.ActionUnsubscribe, notifier, key, 0, "", nil, removed))
	}
	m.logger.Debug("unsubscribed", "key", key, "removed", removed)
}

// Close removes all subscriptions. Later subscribe calls fail. Close is
// idempotent; owners should defer it right after New.
func (m *Mailbox[S]) Close() {
	m.closeOnce.Do(func() {
		m.markClosed()
		m.cleanup.Stop()
		m.UnsubscribeAll()
		m.trace.Log(lifecycleEvent(m.id, log.LifecycleClosed, 0))
	})
}

// SubscriptionCount returns the number of active subscriptions.
func (m *Mailbox[S]) SubscriptionCount() int {
	return m.registry.count(m.relay)
}

// IsSubscribed reports whether a subscription exists for (notifier, key).
func (m *Mailbox[S]) IsSubscribed(notifier Notifier, key string) bool {
	return m.registry.contains(m.relay, notifier, key)
}

// dispatch turns a raw change into a Message and routes it.
func (m *Mailbox[S]) dispatch(notifier Notifier, key string, change Change) {
	msg := NewMessage(notifier, key, change)

	r := m.lookupRoute(entryKey{notifier: notifier, key: key})
	if r == nil {
		m.drop(msg, DropUnsubscribed)
		return
	}
	if r.park(msg) {
		return
	}
	m.deliver(r, msg)
}

// deliver hands msg to the route's destination, through the current queue
// if one is set.
func (m *Mailbox[S]) deliver(r *route[S], msg *Message) {
	if m.subscriber.Value() == nil {
		m.drop(msg, DropSubscriberGone)
		return
	}

	q := m.MessageQueue()
	if q == nil {
		m.invoke(r, msg, false)
		return
	}
	q.Submit(func() { m.invoke(r, msg, true) })
}

func (m *Mailbox[S]) invoke(r *route[S], msg *Message, queued bool) {
	subscriber := m.subscriber.Value()
	if subscriber == nil {
		m.drop(msg, DropSubscriberGone)
		return
	}

	m.metrics.ObserveDelivery(msg.Kind(), queued)
	if m.tracing {
		m.trace.Log(m.deliveryEvent(msg, r.dest.kind, queued))
	}

	r.dest.invoke(subscriber, msg)
}

func (m *Mailbox[S]) drop(msg *Message, reason DropReason) {
	m.metrics.ObserveDrop(reason)
	if m.tracing {
		m.trace.Log(m.dropEvent(msg, reason))
	}
	m.logger.Debug("message dropped", "key", msg.Key(), "reason", reason)
}
