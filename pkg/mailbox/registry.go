package mailbox

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// entryKey identifies a registration within one owner.
type entryKey struct {
	notifier Notifier
	key      string
}

// entry is one registration. It holds the notifier strongly until removed.
type entry struct {
	notifier Notifier
	key      string
	options  Options
}

// registry is the table of all registrations made by mailboxes. A single
// mutex serializes every AddObserver/RemoveObserver call in the process.
type registry struct {
	mu sync.Mutex

	// Registrations by owning observer, then by (notifier, key).
	owners map[Observer]map[entryKey]*entry

	// Number of registrations across all owners.
	size atomic.Int64
}

// sharedRegistry is used by every mailbox.
var sharedRegistry = newRegistry()

func newRegistry() *registry {
	return &registry{
		owners: make(map[Observer]map[entryKey]*entry),
	}
}

// validNotifier reports whether n can be used as a registration key. Nil
// pointers wrapped in the interface count as nil, and values whose dynamic
// contents cannot be hashed are rejected.
func validNotifier(n Notifier) bool {
	if n == nil {
		return false
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Slice, reflect.UnsafePointer:
		if v.IsNil() {
			return false
		}
	}
	return v.Type().Comparable() && hashable(n)
}

// hashable reports whether n can be stored as a map key. A comparable type
// can still hold an unhashable value in an interface field.
func hashable(n Notifier) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	keys := make(map[Notifier]struct{}, 1)
	keys[n] = struct{}{}
	return len(keys) == 1
}

// register adds owner as an observer of key on notifier. It returns false
// without side effects if the arguments are invalid or the registration
// already exists.
func (r *registry) register(owner Observer, notifier Notifier, key string, options Options) bool {
	if owner == nil || !validNotifier(notifier) || key == "" {
		return false
	}
	ek := entryKey{notifier: notifier, key: key}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.owners[owner]
	if _, exists := entries[ek]; exists {
		return false
	}

	notifier.AddObserver(owner, key, options)

	if entries == nil {
		entries = make(map[entryKey]*entry)
		r.owners[owner] = entries
	}
	entries[ek] = &entry{notifier: notifier, key: key, options: options}
	r.size.Add(1)

	return true
}

// unregister removes a single registration. It returns false if none exists.
func (r *registry) unregister(owner Observer, notifier Notifier, key string) bool {
	if owner == nil || !validNotifier(notifier) || key == "" {
		return false
	}
	ek := entryKey{notifier: notifier, key: key}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.owners[owner]
	e, exists := entries[ek]
	if !exists {
		return false
	}

	r.removeLocked(owner, entries, ek, e)
	return true
}

// unregisterNotifier removes every registration of owner on notifier and
// returns the keys that were removed.
func (r *registry) unregisterNotifier(owner Observer, notifier Notifier) []string {
	if owner == nil || !validNotifier(notifier) {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.owners[owner]
	var keys []string
	for ek, e := range entries {
		if ek.notifier != notifier {
			continue
		}
		r.removeLocked(owner, entries, ek, e)
		keys = append(keys, ek.key)
	}
	return keys
}

// unregisterAll removes every registration of owner and returns them.
func (r *registry) unregisterAll(owner Observer) []entryKey {
	if owner == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.owners[owner]
	removed := make([]entryKey, 0, len(entries))
	for ek, e := range entries {
		r.removeLocked(owner, entries, ek, e)
		removed = append(removed, ek)
	}
	return removed
}

// removeLocked drops one entry. Must be called with r.mu held.
func (r *registry) removeLocked(owner Observer, entries map[entryKey]*entry, ek entryKey, e *entry) {
	// Entry is gone even if RemoveObserver panics.
	delete(entries, ek)
	if len(entries) == 0 {
		delete(r.owners, owner)
	}
	r.size.Add(-1)

	e.notifier.RemoveObserver(owner, e.key)
}

// contains reports whether owner is registered for (notifier, key).
func (r *registry) contains(owner Observer, notifier Notifier, key string) bool {
	if !validNotifier(notifier) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.owners[owner][entryKey{notifier: notifier, key: key}]
	return exists
}

// count returns the number of registrations held by owner.
func (r *registry) count(owner Observer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners[owner])
}

// total returns the number of registrations across all owners.
func (r *registry) total() int {
	return int(r.size.Load())
}
