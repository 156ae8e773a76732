package mailbox_test

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mailbox-go/mailbox-go/pkg/mailbox"
	"github.com/mailbox-go/mailbox-go/pkg/mailbox/mocks"
	"github.com/mailbox-go/mailbox-go/pkg/observable"
	"github.com/mailbox-go/mailbox-go/pkg/queue"
)

type viewModel struct {
	mu        sync.Mutex
	title     string
	refreshes int
	messages  []*mailbox.Message
	contexts  []any
}

func (v *viewModel) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshes++
}

func (v *viewModel) TitleChanged(msg *mailbox.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages, msg)
	if title, ok := msg.NewValue(); ok {
		v.title = title.(string)
	}
}

func (v *viewModel) ObserveContext(userContext any, msg *mailbox.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.contexts = append(v.contexts, userContext)
	v.messages = append(v.messages, msg)
}

// collector gathers messages from a closure destination.
type collector struct {
	mu       sync.Mutex
	messages []*mailbox.Message
}

func (c *collector) add(msg *mailbox.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *collector) all() []*mailbox.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*mailbox.Message(nil), c.messages...)
}

// taggedNotifier has a comparable type whose tag may hold an unhashable value.
type taggedNotifier struct{ tag any }

func (taggedNotifier) AddObserver(mailbox.Observer, string, mailbox.Options) {}
func (taggedNotifier) RemoveObserver(mailbox.Observer, string)               {}

// open returns a mailbox whose subscriber stays alive until the test ends.
func open(t *testing.T) *mailbox.Mailbox[viewModel] {
	t.Helper()
	vm := &viewModel{}
	mb := mailbox.New(vm)
	t.Cleanup(func() {
		mb.Close()
		runtime.KeepAlive(vm)
	})
	return mb
}

func newValue(t *testing.T, msg *mailbox.Message) any {
	t.Helper()
	v, ok := msg.NewValue()
	require.True(t, ok, "message %s has no new value", msg)
	return v
}

func TestSubscribeDeliversSynchronously(t *testing.T) {
	vm := &viewModel{}
	mb := mailbox.New(vm)
	defer mb.Close()

	doc := observable.New("doc")
	doc.Set("title", "draft")

	var got collector
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew|mailbox.OptionOld, got.add))
	assert.True(t, mb.IsSubscribed(doc, "title"))
	assert.Equal(t, 1, mb.SubscriptionCount())
	assert.Equal(t, 1, doc.ObserverCount("title"))

	doc.Set("title", "final")

	msgs := got.all()
	require.Len(t, msgs, 1)
	assert.Same(t, doc, msgs[0].Notifier())
	assert.Equal(t, "title", msgs[0].Key())
	assert.Equal(t, mailbox.KindSetting, msgs[0].Kind())
	old, ok := msgs[0].OldValue()
	assert.True(t, ok)
	assert.Equal(t, "draft", old)
	assert.Equal(t, "final", newValue(t, msgs[0]))
	assert.Same(t, vm, mb.Subscriber())
}

func TestSubscribeRejectsDuplicate(t *testing.T) {
	n := mocks.NewMockNotifier(t)
	n.EXPECT().AddObserver(mock.Anything, "title", mailbox.OptionNew).Return().Once()
	n.EXPECT().RemoveObserver(mock.Anything, "title").Return().Once()

	vm := &viewModel{}
	mb := mailbox.New(vm)

	require.True(t, mb.Subscribe(n, "title", mailbox.OptionNew, func(*mailbox.Message) {}))
	assert.False(t, mb.Subscribe(n, "title", mailbox.OptionNew, func(*mailbox.Message) {}))
	assert.False(t, mb.SubscribeMethod(n, "title", mailbox.OptionNew, "Refresh"))
	assert.False(t, mb.SubscribeContext(n, "title", mailbox.OptionNew, "ctx"))
	assert.Equal(t, 1, mb.SubscriptionCount())

	mb.Close()
	assert.Zero(t, mb.SubscriptionCount())
}

func TestSameKeyOnDifferentMailboxes(t *testing.T) {
	doc := observable.New("doc")
	a, b := mailbox.New(&viewModel{}), mailbox.New(&viewModel{})
	defer a.Close()
	defer b.Close()

	require.True(t, a.Subscribe(doc, "title", 0, func(*mailbox.Message) {}))
	require.True(t, b.Subscribe(doc, "title", 0, func(*mailbox.Message) {}))
	assert.Equal(t, 2, doc.ObserverCount("title"))
}

func TestSubscribeRejectsInvalidArguments(t *testing.T) {
	n := mocks.NewMockNotifier(t)
	mb := open(t)

	fn := func(*mailbox.Message) {}
	assert.False(t, mb.Subscribe(nil, "title", 0, fn))
	assert.False(t, mb.Subscribe(n, "", 0, fn))
	assert.False(t, mb.Subscribe(n, "title", 0, nil))
	assert.False(t, mb.SubscribeMethod(n, "title", 0, "Missing"))
	assert.False(t, mb.SubscribeMethod(n, "title", 0, "ObserveContext"))
	assert.False(t, mb.Subscribe((*observable.Object)(nil), "title", 0, fn))
	assert.False(t, mb.Subscribe(taggedNotifier{tag: []int{1}}, "title", 0, fn))
	assert.False(t, mb.Unsubscribe(taggedNotifier{tag: []int{1}}, "title"))
	assert.False(t, mb.UnsubscribeNotifier((*observable.Object)(nil)))
	assert.Zero(t, mb.SubscriptionCount())

	// The mailbox stays usable after rejecting them.
	doc := observable.New("doc")
	assert.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew, fn))
	assert.True(t, mb.Unsubscribe(doc, "title"))
}

func TestPanickingAddObserverLeavesNoSubscription(t *testing.T) {
	n := mocks.NewMockNotifier(t)
	mb := open(t)
	fn := func(*mailbox.Message) {}

	n.EXPECT().AddObserver(mock.Anything, "title", mailbox.OptionNew).
		Run(func(mailbox.Observer, string, mailbox.Options) { panic("add failed") }).
		Once()
	assert.Panics(t, func() { mb.Subscribe(n, "title", mailbox.OptionNew, fn) })
	assert.False(t, mb.IsSubscribed(n, "title"))
	assert.Zero(t, mb.SubscriptionCount())

	n.EXPECT().AddObserver(mock.Anything, "title", mailbox.OptionNew).Once()
	n.EXPECT().RemoveObserver(mock.Anything, "title").Once()
	assert.True(t, mb.Subscribe(n, "title", mailbox.OptionNew, fn))
	assert.Equal(t, 1, mb.SubscriptionCount())
}

func TestUnsubscribeMissingIsNoop(t *testing.T) {
	n := mocks.NewMockNotifier(t)
	mb := open(t)

	assert.False(t, mb.Unsubscribe(n, "title"))
	assert.False(t, mb.Unsubscribe(nil, "title"))
	assert.False(t, mb.UnsubscribeNotifier(n))
	mb.UnsubscribeAll()
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	doc := observable.New("doc")
	mb := open(t)

	var got collector
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew, got.add))
	doc.Set("title", "a")
	require.True(t, mb.Unsubscribe(doc, "title"))
	doc.Set("title", "b")

	assert.Len(t, got.all(), 1)
	assert.Zero(t, doc.ObserverCount("title"))
	assert.False(t, mb.IsSubscribed(doc, "title"))

	// The pair can be subscribed again.
	assert.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew, got.add))
}

func TestUnsubscribeNotifier(t *testing.T) {
	doc, other := observable.New("doc"), observable.New("other")
	mb := open(t)

	fn := func(*mailbox.Message) {}
	require.True(t, mb.Subscribe(doc, "title", 0, fn))
	require.True(t, mb.Subscribe(doc, "body", 0, fn))
	require.True(t, mb.Subscribe(other, "title", 0, fn))

	assert.True(t, mb.UnsubscribeNotifier(doc))
	assert.Zero(t, doc.ObserverCount("title"))
	assert.Zero(t, doc.ObserverCount("body"))
	assert.Equal(t, 1, other.ObserverCount("title"))
	assert.Equal(t, 1, mb.SubscriptionCount())
	assert.False(t, mb.UnsubscribeNotifier(doc))
}

func TestUnsubscribeInsideCallback(t *testing.T) {
	doc := observable.New("doc")
	mb := open(t)

	calls := 0
	require.True(t, mb.Subscribe(doc, "title", 0, func(*mailbox.Message) {
		calls++
		mb.Unsubscribe(doc, "title")
	}))

	doc.Set("title", "a")
	doc.Set("title", "b")

	assert.Equal(t, 1, calls)
	assert.Zero(t, mb.SubscriptionCount())
}

func TestSubscribeMethod(t *testing.T) {
	doc := observable.New("doc")
	vm := &viewModel{}
	mb := mailbox.New(vm)
	defer mb.Close()

	require.True(t, mb.SubscribeMethod(doc, "title", mailbox.OptionNew, "TitleChanged"))
	require.True(t, mb.SubscribeMethod(doc, "body", 0, "Refresh"))

	doc.Set("title", "hello")
	doc.Set("body", "text")
	doc.Set("body", "more")

	vm.mu.Lock()
	defer vm.mu.Unlock()
	assert.Equal(t, "hello", vm.title)
	assert.Len(t, vm.messages, 1)
	assert.Equal(t, 2, vm.refreshes)
}

func TestSubscribeContext(t *testing.T) {
	doc := observable.New("doc")
	vm := &viewModel{}
	mb := mailbox.New(vm)
	defer mb.Close()

	type tag struct{ field string }
	require.True(t, mb.SubscribeContext(doc, "title", mailbox.OptionNew, tag{"title"}))
	require.True(t, mb.SubscribeContext(doc, "body", mailbox.OptionNew, nil))

	doc.Set("title", "t")
	doc.Set("body", "b")

	vm.mu.Lock()
	defer vm.mu.Unlock()
	assert.Equal(t, []any{tag{"title"}, nil}, vm.contexts)
	require.Len(t, vm.messages, 2)
	assert.Equal(t, "body", vm.messages[1].Key())
}

func TestSubscribeContextRequiresContextObserver(t *testing.T) {
	type plain struct{ name string }
	mb := mailbox.New(&plain{})
	defer mb.Close()

	assert.False(t, mb.SubscribeContext(observable.New("doc"), "title", 0, "ctx"))
}

func TestInitialOption(t *testing.T) {
	doc := observable.New("doc")
	doc.Set("title", "existing")

	mb := open(t)

	var got collector
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionInitial|mailbox.OptionNew, got.add))

	msgs := got.all()
	require.Len(t, msgs, 1, "initial message must arrive before Subscribe returns")
	assert.Equal(t, "existing", newValue(t, msgs[0]))
}

func TestInitialCallbackMaySubscribe(t *testing.T) {
	doc, other := observable.New("doc"), observable.New("other")
	doc.Set("title", "x")

	mb := open(t)

	nested := false
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionInitial, func(*mailbox.Message) {
		nested = mb.Subscribe(other, "title", 0, func(*mailbox.Message) {})
	}))

	assert.True(t, nested)
	assert.Equal(t, 2, mb.SubscriptionCount())
}

func TestPriorOption(t *testing.T) {
	doc := observable.New("doc")
	doc.Set("count", 1)

	mb := open(t)

	var got collector
	require.True(t, mb.Subscribe(doc, "count", mailbox.OptionPrior|mailbox.OptionOld|mailbox.OptionNew, got.add))
	doc.Set("count", 2)

	msgs := got.all()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].IsPriorToChange())
	_, hasNew := msgs[0].NewValue()
	assert.False(t, hasNew)
	assert.False(t, msgs[1].IsPriorToChange())
	assert.Equal(t, 2, newValue(t, msgs[1]))
}

func TestNullValuesAreAbsent(t *testing.T) {
	doc := observable.New("doc")
	mb := open(t)

	var got collector
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew|mailbox.OptionOld, got.add))
	doc.Set("title", nil)

	msgs := got.all()
	require.Len(t, msgs, 1)
	_, hasOld := msgs[0].OldValue()
	_, hasNew := msgs[0].NewValue()
	assert.False(t, hasOld)
	assert.False(t, hasNew)
}

func TestListChanges(t *testing.T) {
	todo := observable.New("todo")
	todo.Set("items", []any{"a", "b", "c"})

	mb := open(t)

	var got collector
	require.True(t, mb.Subscribe(todo, "items", mailbox.OptionNew|mailbox.OptionOld, got.add))

	require.NoError(t, todo.Insert("items", 3, "d"))
	require.NoError(t, todo.Remove("items", 2, 0))
	require.NoError(t, todo.Replace("items", 0, "B"))

	msgs := got.all()
	require.Len(t, msgs, 3)
	assert.Equal(t, mailbox.KindInsertion, msgs[0].Kind())
	assert.Equal(t, []int{3}, msgs[0].Indexes())
	assert.Equal(t, mailbox.KindRemoval, msgs[1].Kind())
	assert.Equal(t, []int{0, 2}, msgs[1].Indexes())
	assert.Equal(t, mailbox.KindReplacement, msgs[2].Kind())
	assert.Equal(t, []any{"B"}, newValue(t, msgs[2]))
}

func TestMessageQueue(t *testing.T) {
	q := mocks.NewMockDeliveryQueue(t)
	var pending []func()
	q.EXPECT().Submit(mock.Anything).Run(func(work func()) {
		pending = append(pending, work)
	}).Return().Times(2)

	doc := observable.New("doc")
	vm := &viewModel{}
	mb := mailbox.NewWithConfig(vm, mailbox.Config{MessageQueue: q})
	defer mb.Close()
	defer runtime.KeepAlive(vm)
	assert.Same(t, q, mb.MessageQueue())

	var got collector
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew, got.add))

	doc.Set("title", "a")
	doc.Set("title", "b")
	assert.Empty(t, got.all())
	require.Len(t, pending, 2)

	for _, work := range pending {
		work()
	}
	msgs := got.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", newValue(t, msgs[0]))
	assert.Equal(t, "b", newValue(t, msgs[1]))

	mb.SetMessageQueue(nil)
	assert.Nil(t, mb.MessageQueue())
	doc.Set("title", "c")
	assert.Len(t, got.all(), 3)
}

func TestQueueChangeKeepsSubmittedWork(t *testing.T) {
	first := queue.NewSerial("first")
	defer first.Close()

	release := make(chan struct{})
	first.Submit(func() { <-release })

	doc := observable.New("doc")
	vm := &viewModel{}
	mb := mailbox.NewWithConfig(vm, mailbox.Config{MessageQueue: first})
	defer mb.Close()
	defer runtime.KeepAlive(vm)

	var got collector
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew, got.add))

	doc.Set("title", "queued")
	mb.SetMessageQueue(queue.Inline{})
	doc.Set("title", "inline")

	msgs := got.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "inline", newValue(t, msgs[0]))

	close(release)
	require.NoError(t, first.Flush(context.Background()))
	msgs = got.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, "queued", newValue(t, msgs[1]))
}

func TestSerialQueuePreservesOrder(t *testing.T) {
	q := queue.NewSerial("ordered")
	defer q.Close()

	doc := observable.New("doc")
	vm := &viewModel{}
	mb := mailbox.NewWithConfig(vm, mailbox.Config{MessageQueue: q})
	defer mb.Close()

	var got collector
	require.True(t, mb.Subscribe(doc, "n", mailbox.OptionNew, got.add))

	const changes = 1000
	for i := range changes {
		doc.Set("n", i)
	}
	require.NoError(t, q.Flush(context.Background()))

	msgs := got.all()
	require.Len(t, msgs, changes)
	for i, msg := range msgs {
		if v := newValue(t, msg); v != i {
			t.Fatalf("message %d carries %v", i, v)
		}
	}
	runtime.KeepAlive(vm)
}

func TestConcurrentSubscriptions(t *testing.T) {
	doc := observable.New("doc")
	mb := open(t)

	const goroutines, keys = 100, 100
	var wg sync.WaitGroup
	var failed sync.Map
	for g := range goroutines {
		wg.Go(func() {
			for k := range keys {
				key := fmt.Sprintf("k-%d-%d", g, k)
				if !mb.Subscribe(doc, key, 0, func(*mailbox.Message) {}) {
					failed.Store(key, true)
				}
			}
		})
	}
	wg.Wait()

	failed.Range(func(key, _ any) bool {
		t.Errorf("subscribe %v failed", key)
		return true
	})
	assert.Equal(t, goroutines*keys, mb.SubscriptionCount())
	assert.Equal(t, 1, doc.ObserverCount("k-0-0"))
	assert.Equal(t, 1, doc.ObserverCount("k-99-99"))

	mb.Close()
	assert.Zero(t, mb.SubscriptionCount())
	assert.Zero(t, doc.ObserverCount("k-42-7"))
}

func TestConcurrentDuplicateSubscribe(t *testing.T) {
	doc := observable.New("doc")
	mb := open(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 50 {
		wg.Go(func() {
			if mb.Subscribe(doc, "title", 0, func(*mailbox.Message) {}) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, doc.ObserverCount("title"))
}

func TestCloseReleasesNotifiers(t *testing.T) {
	docs := []*observable.Object{observable.New("a"), observable.New("b"), observable.New("c")}
	mb := mailbox.New(&viewModel{})

	for _, doc := range docs {
		for _, key := range []string{"x", "y"} {
			require.True(t, mb.Subscribe(doc, key, 0, func(*mailbox.Message) {}))
		}
	}
	require.Equal(t, 6, mb.SubscriptionCount())

	mb.Close()
	mb.Close()

	assert.Zero(t, mb.SubscriptionCount())
	for _, doc := range docs {
		assert.Zero(t, doc.ObserverCount("x"))
		assert.Zero(t, doc.ObserverCount("y"))
	}
	assert.False(t, mb.Subscribe(docs[0], "x", 0, func(*mailbox.Message) {}))
	assert.Zero(t, docs[0].ObserverCount("x"))
}

// subscribeAndDrop leaves a mailbox with a subscription unreachable.
func subscribeAndDrop(t *testing.T, doc *observable.Object) string {
	mb := mailbox.New(&viewModel{})
	require.True(t, mb.Subscribe(doc, "title", 0, func(*mailbox.Message) {}))
	return mb.ID()
}

func TestCollectedMailboxReleasesRegistrations(t *testing.T) {
	doc := observable.New("doc")
	id := subscribeAndDrop(t, doc)
	require.NotEmpty(t, id)
	require.Equal(t, 1, doc.ObserverCount("title"))

	require.Eventually(t, func() bool {
		runtime.GC()
		return doc.ObserverCount("title") == 0
	}, 5*time.Second, 10*time.Millisecond)
}

// orphanedMailbox returns a mailbox whose subscriber is unreachable.
func orphanedMailbox(t *testing.T, doc *observable.Object, metrics mailbox.Metrics) *mailbox.Mailbox[viewModel] {
	mb := mailbox.NewWithConfig(&viewModel{}, mailbox.Config{Metrics: metrics})
	require.True(t, mb.Subscribe(doc, "title", mailbox.OptionNew, func(*mailbox.Message) {
		t.Error("message delivered for a collected subscriber")
	}))
	return mb
}

func TestCollectedSubscriberDropsMessages(t *testing.T) {
	metrics := mocks.NewMockMetrics(t)
	metrics.EXPECT().ObserveSubscribe("CLOSURE", true).Return().Once()
	metrics.EXPECT().SetActiveSubscriptions(mock.Anything).Return().Maybe()
	metrics.EXPECT().ObserveDrop(mailbox.DropSubscriberGone).Return().Once()
	metrics.EXPECT().ObserveUnsubscribe(1).Return().Once()

	doc := observable.New("doc")
	mb := orphanedMailbox(t, doc, metrics)
	defer mb.Close()

	require.Eventually(t, func() bool {
		runtime.GC()
		return mb.Subscriber() == nil
	}, 5*time.Second, 10*time.Millisecond)

	doc.Set("title", "lost")
}

func TestMetrics(t *testing.T) {
	metrics := mocks.NewMockMetrics(t)
	metrics.EXPECT().ObserveSubscribe("METHOD", true).Return().Once()
	metrics.EXPECT().ObserveSubscribe("METHOD", false).Return().Once()
	metrics.EXPECT().SetActiveSubscriptions(mock.Anything).Return().Times(2)
	metrics.EXPECT().ObserveDelivery(mailbox.KindSetting, false).Return().Once()
	metrics.EXPECT().ObserveUnsubscribe(1).Return().Once()

	doc := observable.New("doc")
	vm := &viewModel{}
	mb := mailbox.NewWithConfig(vm, mailbox.Config{Metrics: metrics})

	require.True(t, mb.SubscribeMethod(doc, "title", 0, "Refresh"))
	require.False(t, mb.SubscribeMethod(doc, "body", 0, "Missing"))
	doc.Set("title", "x")
	mb.Close()

	assert.Equal(t, 1, vm.refreshes)
}

func TestMailboxIDsAreUnique(t *testing.T) {
	a, b := mailbox.New(&viewModel{}), mailbox.New(&viewModel{})
	defer a.Close()
	defer b.Close()

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
