package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// logEncMode encodes trace events with nanosecond timestamps and canonical
// map ordering.
var logEncMode cbor.EncMode

// logDecMode tolerates indefinite-length items written by other encoders.
// Its limits follow the event shape: an event map holds one payload map, and
// the deepest item is the index array of a delivery.
var logDecMode cbor.DecMode

const (
	// maxEventNesting covers event map, payload map and index array.
	maxEventNesting = 4

	// maxEventFields bounds the pairs in an event or payload map.
	maxEventFields = 16

	// maxEventIndexes bounds the indexes recorded for one list change.
	maxEventIndexes = 1 << 20
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	logEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
		MaxNestedLevels:   maxEventNesting,
		MaxMapPairs:       maxEventFields,
		MaxArrayElements:  maxEventIndexes,
	}
	logDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes an Event to CBOR.
func EncodeEvent(event Event) ([]byte, error) {
	return logEncMode.Marshal(event)
}

// DecodeEvent decodes CBOR bytes into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := logDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns an encoder that writes a CBOR sequence of events to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return logEncMode.NewEncoder(w)
}

// NewDecoder returns a decoder for a CBOR sequence of events read from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return logDecMode.NewDecoder(r)
}
