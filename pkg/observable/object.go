// Package observable provides Object, a keyed property bag that implements
// mailbox.Notifier.
//
// Scalar keys are changed with Set. A key whose value is a []any is a list
// and can also be changed element-wise with Insert, Remove and Replace,
// which report the affected indexes. Observers are called synchronously on
// the goroutine making the change, never with the object's lock held.
//
// Each change is applied atomically, and its notification carries the value
// it actually replaced. Notifications from concurrent writers to one key may
// reach observers in a different order than the changes were applied, and a
// prior notification reflects the value seen before the write began.
package observable

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mailbox-go/mailbox-go/pkg/mailbox"
)

// Errors returned by list mutations.
var (
	ErrNotList          = errors.New("value is not a list")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrDuplicateIndexes = errors.New("duplicate indexes")
)

type registration struct {
	observer mailbox.Observer
	options  mailbox.Options
}

// Object stores named values and notifies registered observers of changes.
// It is safe for concurrent use. Observers must be comparable.
type Object struct {
	name string

	mu        sync.RWMutex
	values    map[string]any
	observers map[string][]registration
}

// New creates an empty Object.
func New(name string) *Object {
	return &Object{
		name:      name,
		values:    make(map[string]any),
		observers: make(map[string][]registration),
	}
}

// Name returns the object name.
func (o *Object) Name() string {
	return o.name
}

// String implements fmt.Stringer.
func (o *Object) String() string {
	return "Object(" + o.name + ")"
}

// AddObserver registers observer for key. With OptionInitial the observer
// is immediately sent a KindSetting change describing the current value.
func (o *Object) AddObserver(observer mailbox.Observer, key string, options mailbox.Options) {
	o.mu.Lock()
	o.observers[key] = append(o.observers[key], registration{observer: observer, options: options})
	current := o.values[key]
	o.mu.Unlock()

	if options.Has(mailbox.OptionInitial) {
		change := mailbox.Change{Kind: mailbox.KindSetting}
		if options.Has(mailbox.OptionNew) {
			change.New = present(current)
		}
		observer.ObserveValue(o, key, change)
	}
}

// RemoveObserver removes the first registration of observer for key.
func (o *Object) RemoveObserver(observer mailbox.Observer, key string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	regs := o.observers[key]
	for i, r := range regs {
		if r.observer == observer {
			regs = slices.Delete(regs, i, i+1)
			break
		}
	}
	if len(regs) == 0 {
		delete(o.observers, key)
		return
	}
	o.observers[key] = regs
}

// ObserverCount returns the number of registrations for key.
func (o *Object) ObserverCount(key string) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.observers[key])
}

// Get returns the value of key.
func (o *Object) Get(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[key]
	if list, isList := v.([]any); isList {
		return slices.Clone(list), ok
	}
	return v, ok
}

// List returns a copy of the list stored under key.
func (o *Object) List(key string) ([]any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	list, ok := o.values[key].([]any)
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// Keys returns the keys that have a value, sorted.
func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set replaces the value of key. A nil value is stored and reported as
// mailbox.Null.
func (o *Object) Set(key string, value any) {
	if list, ok := value.([]any); ok {
		value = slices.Clone(list)
	}

	o.mu.RLock()
	prev := o.values[key]
	regs := slices.Clone(o.observers[key])
	o.mu.RUnlock()

	o.notify(regs, key, mailbox.KindSetting, nil, prev, nil, true)

	o.mu.Lock()
	old := o.values[key]
	o.values[key] = value
	regs = slices.Clone(o.observers[key])
	o.mu.Unlock()

	o.notify(regs, key, mailbox.KindSetting, nil, old, value, false)
}

// Insert inserts values into the list at key, starting at index. A missing
// key is treated as an empty list.
func (o *Object) Insert(key string, index int, values ...any) error {
	if len(values) == 0 {
		return nil
	}
	check := func(list []any) error {
		if index < 0 || index > len(list) {
			return fmt.Errorf("insert at %d into %s: %w", index, key, ErrIndexOutOfRange)
		}
		return nil
	}

	_, regs, err := o.snapshotList(key, check)
	if err != nil {
		return err
	}

	indexes := make([]int, len(values))
	for i := range values {
		indexes[i] = index + i
	}

	o.notify(regs, key, mailbox.KindInsertion, indexes, nil, nil, true)

	regs, err = o.modifyList(key, func(list []any) ([]any, error) {
		if err := check(list); err != nil {
			return nil, err
		}
		return slices.Insert(slices.Clone(list), index, values...), nil
	})
	if err != nil {
		return err
	}

	o.notify(regs, key, mailbox.KindInsertion, indexes, nil, slices.Clone(values), false)
	return nil
}

// Remove removes the elements at indexes from the list at key.
func (o *Object) Remove(key string, indexes ...int) error {
	if len(indexes) == 0 {
		return nil
	}
	sorted := slices.Clone(indexes)
	slices.Sort(sorted)
	if len(slices.Compact(slices.Clone(sorted))) != len(sorted) {
		return fmt.Errorf("remove from %s: %w", key, ErrDuplicateIndexes)
	}
	check := func(list []any) error {
		if sorted[0] < 0 || sorted[len(sorted)-1] >= len(list) {
			return fmt.Errorf("remove %v from %s: %w", indexes, key, ErrIndexOutOfRange)
		}
		return nil
	}
	pick := func(list []any) []any {
		picked := make([]any, len(sorted))
		for i, idx := range sorted {
			picked[i] = list[idx]
		}
		return picked
	}

	list, regs, err := o.snapshotList(key, check)
	if err != nil {
		return err
	}

	o.notify(regs, key, mailbox.KindRemoval, sorted, pick(list), nil, true)

	var removed []any
	regs, err = o.modifyList(key, func(list []any) ([]any, error) {
		if err := check(list); err != nil {
			return nil, err
		}
		removed = pick(list)
		remaining := make([]any, 0, len(list)-len(sorted))
		for i, v := range list {
			if _, found := slices.BinarySearch(sorted, i); !found {
				remaining = append(remaining, v)
			}
		}
		return remaining, nil
	})
	if err != nil {
		return err
	}

	o.notify(regs, key, mailbox.KindRemoval, sorted, removed, nil, false)
	return nil
}

// Replace replaces the element at index in the list at key.
func (o *Object) Replace(key string, index int, value any) error {
	check := func(list []any) error {
		if index < 0 || index >= len(list) {
			return fmt.Errorf("replace %d in %s: %w", index, key, ErrIndexOutOfRange)
		}
		return nil
	}

	list, regs, err := o.snapshotList(key, check)
	if err != nil {
		return err
	}

	indexes := []int{index}
	o.notify(regs, key, mailbox.KindReplacement, indexes, []any{list[index]}, nil, true)

	var old []any
	regs, err = o.modifyList(key, func(list []any) ([]any, error) {
		if err := check(list); err != nil {
			return nil, err
		}
		old = []any{list[index]}
		updated := slices.Clone(list)
		updated[index] = value
		return updated, nil
	})
	if err != nil {
		return err
	}

	o.notify(regs, key, mailbox.KindReplacement, indexes, old, []any{value}, false)
	return nil
}

// snapshotList returns the list at key and its observers after check
// accepts the list.
func (o *Object) snapshotList(key string, check func([]any) error) ([]any, []registration, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	list, err := o.listLocked(key)
	if err != nil {
		return nil, nil, err
	}
	if err := check(list); err != nil {
		return nil, nil, err
	}
	return list, slices.Clone(o.observers[key]), nil
}

// modifyList replaces the list at key with the result of fn, applied to the
// current list under the write lock, and returns the observers to notify.
func (o *Object) modifyList(key string, fn func([]any) ([]any, error)) ([]registration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, err := o.listLocked(key)
	if err != nil {
		return nil, err
	}
	updated, err := fn(list)
	if err != nil {
		return nil, err
	}
	o.values[key] = updated
	return slices.Clone(o.observers[key]), nil
}

// listLocked returns the list at key. Must be called with o.mu held.
func (o *Object) listLocked(key string) ([]any, error) {
	v, ok := o.values[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotList)
	}
	return list, nil
}

// notify sends one change to every registration. Prior notifications go only
// to registrations with OptionPrior and never carry the new value.
func (o *Object) notify(regs []registration, key string, kind mailbox.Kind, indexes []int, oldValue, newValue any, prior bool) {
	for _, r := range regs {
		if prior && !r.options.Has(mailbox.OptionPrior) {
			continue
		}
		change := mailbox.Change{Kind: kind, Indexes: indexes, IsPrior: prior}
		if r.options.Has(mailbox.OptionOld) && kind != mailbox.KindInsertion {
			change.Old = present(oldValue)
		}
		if !prior && r.options.Has(mailbox.OptionNew) && kind != mailbox.KindRemoval {
			change.New = present(newValue)
		}
		r.observer.ObserveValue(o, key, change)
	}
}

// present maps a nil value to the Null marker.
func present(v any) any {
	if v == nil {
		return mailbox.Null
	}
	return v
}

// Compile-time interface satisfaction check.
var _ mailbox.Notifier = (*Object)(nil)
