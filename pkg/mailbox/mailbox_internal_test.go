package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailbox-go/mailbox-go/pkg/log"
)

// traceRecorder collects trace events.
type traceRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *traceRecorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *traceRecorder) categories() []log.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]log.Category, len(r.events))
	for i, e := range r.events {
		out[i] = e.Category
	}
	return out
}

func (r *traceRecorder) last() log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// dropCounter counts drops by reason.
type dropCounter struct {
	NoopMetrics
	mu    sync.Mutex
	drops map[DropReason]int
}

func (d *dropCounter) ObserveDrop(reason DropReason) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.drops == nil {
		d.drops = make(map[DropReason]int)
	}
	d.drops[reason]++
}

func (d *dropCounter) count(reason DropReason) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drops[reason]
}

func TestStaleEventAfterUnsubscribeIsDropped(t *testing.T) {
	metrics := &dropCounter{}
	m := newMailbox(&target{}, Config{Metrics: metrics}, newRegistry())
	defer m.Close()

	n := newFakeNotifier()
	calls := 0
	require.True(t, m.Subscribe(n, "a", OptionNew, func(*Message) { calls++ }))
	require.True(t, m.Unsubscribe(n, "a"))

	// A notifier that snapshotted its observers before the unsubscribe.
	m.relay.ObserveValue(n, "a", Change{New: 1})

	assert.Zero(t, calls)
	assert.Equal(t, 1, metrics.count(DropUnsubscribed))
}

func TestEventForUnknownKeyIsDropped(t *testing.T) {
	metrics := &dropCounter{}
	m := newMailbox(&target{}, Config{Metrics: metrics}, newRegistry())
	defer m.Close()

	m.relay.ObserveValue(newFakeNotifier(), "never", Change{})
	assert.Equal(t, 1, metrics.count(DropUnsubscribed))
}

func TestRelayIgnoresCollectedMailbox(t *testing.T) {
	r := &relay[target]{registry: newRegistry()}
	assert.NotPanics(t, func() { r.ObserveValue(newFakeNotifier(), "a", Change{}) })
}

func TestRoutesFollowRegistry(t *testing.T) {
	reg := newRegistry()
	m := newMailbox(&target{}, DefaultConfig(), reg)
	defer m.Close()

	n1, n2 := newFakeNotifier(), newFakeNotifier()
	fn := func(*Message) {}
	require.True(t, m.Subscribe(n1, "a", 0, fn))
	require.True(t, m.Subscribe(n1, "b", 0, fn))
	require.True(t, m.Subscribe(n2, "a", 0, fn))
	assert.Len(t, m.routes, 3)

	require.True(t, m.UnsubscribeNotifier(n1))
	assert.Len(t, m.routes, 1)
	assert.Equal(t, 1, reg.total())

	m.UnsubscribeAll()
	assert.Empty(t, m.routes)
	assert.Zero(t, reg.total())
}

func TestFailedSubscribeLeavesNoRoute(t *testing.T) {
	m := newMailbox(&target{}, DefaultConfig(), newRegistry())
	defer m.Close()

	n := newFakeNotifier()
	require.True(t, m.Subscribe(n, "a", 0, func(*Message) {}))
	require.False(t, m.Subscribe(n, "a", 0, func(*Message) {}))
	require.False(t, m.SubscribeMethod(n, "b", 0, "Missing"))

	assert.Len(t, m.routes, 1)
	assert.Equal(t, 1, n.adds)
}

func TestTraceEvents(t *testing.T) {
	rec := &traceRecorder{}
	tgt := &target{}
	m := newMailbox(tgt, Config{TraceLogger: rec}, newRegistry())

	n := newFakeNotifier()
	require.True(t, m.SubscribeMethod(n, "items", OptionNew|OptionOld, "Changed"))

	sub := rec.last()
	assert.Equal(t, m.ID(), sub.MailboxID)
	assert.Equal(t, log.CategorySubscription, sub.Category)
	assert.Equal(t, "mailbox.target", sub.SubscriberType)
	assert.Equal(t, "*mailbox.fakeNotifier", sub.NotifierType)
	assert.Equal(t, "items", sub.Key)
	require.NotNil(t, sub.Subscription)
	assert.Equal(t, log.ActionSubscribe, sub.Subscription.Action)
	assert.Equal(t, "NEW|OLD", sub.Subscription.Options)
	assert.Equal(t, "METHOD", sub.Subscription.Destination)

	m.relay.ObserveValue(n, "items", Change{Kind: KindInsertion, New: []any{1}, Indexes: []int{0}})
	del := rec.last()
	require.NotNil(t, del.Delivery)
	assert.Equal(t, "INSERTION", del.Delivery.Kind)
	assert.Equal(t, "METHOD", del.Delivery.Destination)
	assert.Equal(t, []int{0}, del.Delivery.Indexes)
	assert.True(t, del.Delivery.HasNew)
	assert.False(t, del.Delivery.HasOld)
	assert.False(t, del.Delivery.Queued)
	assert.Len(t, tgt.messages, 1)

	require.False(t, m.Subscribe(n, "items", 0, func(*Message) {}))
	rej := rec.last()
	require.NotNil(t, rej.Subscription)
	assert.Equal(t, log.ActionReject, rej.Subscription.Action)
	assert.Equal(t, ErrDuplicateSubscription.Error(), rej.Subscription.Reason)

	m.Close()
	m.Close()

	assert.Equal(t, []log.Category{
		log.CategoryLifecycle,
		log.CategorySubscription,
		log.CategoryDelivery,
		log.CategorySubscription,
		log.CategorySubscription,
		log.CategoryLifecycle,
	}, rec.categories())

	rec.mu.Lock()
	unsub := rec.events[4]
	rec.mu.Unlock()
	assert.Equal(t, log.ActionUnsubscribe, unsub.Subscription.Action)
	assert.Equal(t, 1, unsub.Subscription.Removed)

	closed := rec.last()
	assert.Equal(t, log.LifecycleClosed, closed.Lifecycle.State)
}

func TestRejectReasons(t *testing.T) {
	rec := &traceRecorder{}
	m := newMailbox(&noContext{}, Config{TraceLogger: rec}, newRegistry())

	n := newFakeNotifier()
	fn := func(*Message) {}

	tests := []struct {
		name      string
		subscribe func() bool
		reason    error
	}{
		{"nil notifier", func() bool { return m.Subscribe(nil, "a", 0, fn) }, ErrNilNotifier},
		{"not comparable", func() bool { return m.Subscribe(mapNotifier{}, "a", 0, fn) }, ErrNilNotifier},
		{"empty key", func() bool { return m.Subscribe(n, "", 0, fn) }, ErrEmptyKey},
		{"nil closure", func() bool { return m.Subscribe(n, "a", 0, nil) }, ErrInvalidDestination},
		{"missing method", func() bool { return m.SubscribeMethod(n, "a", 0, "Nope") }, ErrInvalidDestination},
		{"no context observer", func() bool { return m.SubscribeContext(n, "a", 0, nil) }, ErrInvalidDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.subscribe())
			e := rec.last()
			require.NotNil(t, e.Subscription)
			assert.Equal(t, log.ActionReject, e.Subscription.Action)
			assert.Equal(t, tt.reason.Error(), e.Subscription.Reason)
		})
	}

	m.Close()
	assert.False(t, m.Subscribe(n, "a", 0, fn))
	rec.mu.Lock()
	closedReject := rec.events[len(rec.events)-1]
	rec.mu.Unlock()
	assert.Equal(t, ErrClosed.Error(), closedReject.Subscription.Reason)
	assert.Zero(t, n.adds)
}

func TestNoopTraceLoggerDisablesTracing(t *testing.T) {
	m := newMailbox(&target{}, Config{TraceLogger: log.NoopLogger{}}, newRegistry())
	defer m.Close()
	assert.False(t, m.tracing)

	traced := newMailbox(&target{}, Config{TraceLogger: &traceRecorder{}}, newRegistry())
	defer traced.Close()
	assert.True(t, traced.tracing)
}
