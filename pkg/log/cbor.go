package log

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Trace files follow the wire codec's conventions (integer keys, canonical
// map order) but store timestamps as RFC 3339 with nanoseconds, in UTC, so
// events from one session sort the same way after a round trip.
var (
	eventEncMode = mustEncMode(cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	})
	eventDecMode = mustDecMode(cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
		// Payload values nested inside fields come back as string-keyed maps.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	mode, err := opts.EncMode()
	if err != nil {
		panic("log: trace encoder options: " + err.Error())
	}
	return mode
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	mode, err := opts.DecMode()
	if err != nil {
		panic("log: trace decoder options: " + err.Error())
	}
	return mode
}

// EncodeEvent encodes one trace record. The timestamp is stored in UTC.
func EncodeEvent(event Event) ([]byte, error) {
	event.Timestamp = event.Timestamp.UTC()
	return eventEncMode.Marshal(event)
}

// DecodeEvent decodes one trace record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	err := eventDecMode.Unmarshal(data, &event)
	return event, err
}

// NewDecoder returns a decoder for a stream of trace records, such as a
// .blog file.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDecMode.NewDecoder(r)
}
