package mailbox

import (
	"reflect"
)

// destinationKind tags the three destination shapes.
type destinationKind uint8

const (
	destinationClosure destinationKind = iota
	destinationMethod
	destinationContext
)

// String returns the destination kind name.
func (k destinationKind) String() string {
	switch k {
	case destinationClosure:
		return "CLOSURE"
	case destinationMethod:
		return "METHOD"
	case destinationContext:
		return "CONTEXT"
	default:
		return "UNKNOWN"
	}
}

var messageType = reflect.TypeFor[*Message]()

// destination is where a subscription's messages go. Exactly one of the
// variant fields is meaningful, selected by kind.
type destination[S any] struct {
	kind destinationKind

	closure func(*Message)

	method       reflect.Method
	takesMessage bool

	userContext any
}

func closureDestination[S any](fn func(*Message)) (destination[S], bool) {
	if fn == nil {
		return destination[S]{kind: destinationClosure}, false
	}
	return destination[S]{kind: destinationClosure, closure: fn}, true
}

// methodDestination resolves an exported method of *S. The method must take
// no arguments or a single *Message; results are ignored.
func methodDestination[S any](name string) (destination[S], bool) {
	invalid := destination[S]{kind: destinationMethod}
	if name == "" {
		return invalid, false
	}
	method, ok := reflect.TypeFor[*S]().MethodByName(name)
	if !ok || method.Type.IsVariadic() {
		return invalid, false
	}

	// In(0) is the receiver.
	switch method.Type.NumIn() {
	case 1:
		return destination[S]{kind: destinationMethod, method: method}, true
	case 2:
		if method.Type.In(1) != messageType {
			return invalid, false
		}
		return destination[S]{kind: destinationMethod, method: method, takesMessage: true}, true
	default:
		return invalid, false
	}
}

func contextDestination[S any](userContext any) (destination[S], bool) {
	if _, ok := any((*S)(nil)).(ContextObserver); !ok {
		return destination[S]{kind: destinationContext}, false
	}
	return destination[S]{kind: destinationContext, userContext: userContext}, true
}

func (d *destination[S]) invoke(subscriber *S, msg *Message) {
	switch d.kind {
	case destinationClosure:
		d.closure(msg)
	case destinationMethod:
		args := []reflect.Value{reflect.ValueOf(subscriber)}
		if d.takesMessage {
			args = append(args, reflect.ValueOf(msg))
		}
		d.method.Func.Call(args)
	case destinationContext:
		any(subscriber).(ContextObserver).ObserveContext(d.userContext, msg)
	}
}
