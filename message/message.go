// Package message implements the immutable command/telemetry record shared
// by every endpoint and transport strategy: the four required latch flags,
// the optional ARMED flag and DATA telemetry payload, and the JSON codec
// that round-trips them byte-for-byte with the wire schema.
package message

import (
	"encoding/json"
	"fmt"

	"orbitalcoms/comserr"
)

// Message is an immutable command/telemetry record. Use New, FromMap,
// FromString or Construct to build one; there is no exported way to mutate
// a Message after construction.
type Message struct {
	abort  int
	qdm    int
	stab   int
	launch int
	armed  *int
	data   map[string]any
}

// Fields mirrors the wire JSON shape and is what from/to-dict operate on.
// The four flags and ARMED use `any` so callers can pass bool, int, float64
// (as decoded from JSON), or leave ARMED nil/absent; DATA is a map or nil.
type Fields struct {
	ABORT  any
	QDM    any
	STAB   any
	LAUNCH any
	ARMED  any
	DATA   map[string]any
}

type wireMessage struct {
	ABORT  int            `json:"ABORT"`
	QDM    int            `json:"QDM"`
	STAB   int            `json:"STAB"`
	LAUNCH int            `json:"LAUNCH"`
	ARMED  *int           `json:"ARMED"`
	DATA   map[string]any `json:"DATA"`
}

// New builds a Message from already-normalized integer flags. It is the
// lowest-level constructor, used internally once coercion has happened.
func New(abort, qdm, stab, launch int, armed *int, data map[string]any) *Message {
	var armedCopy *int
	if armed != nil {
		v := *armed
		armedCopy = &v
	}
	var dataCopy map[string]any
	if data != nil {
		dataCopy = make(map[string]any, len(data))
		for k, v := range data {
			dataCopy[k] = v
		}
	}
	return &Message{abort: abort, qdm: qdm, stab: stab, launch: launch, armed: armedCopy, data: dataCopy}
}

func coerceFlag(op, name string, v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, comserr.TypeError(op, fmt.Sprintf("%s is required", name), nil)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int:
		if x != 0 && x != 1 {
			return 0, comserr.TypeError(op, fmt.Sprintf("%s must be 0 or 1, got %d", name, x), nil)
		}
		return x, nil
	case int64:
		return coerceFlag(op, name, int(x))
	case float64:
		// JSON numbers decode as float64; require an integral 0/1.
		if x != 0 && x != 1 {
			return 0, comserr.TypeError(op, fmt.Sprintf("%s must be 0 or 1, got %v", name, x), nil)
		}
		return int(x), nil
	default:
		return 0, comserr.TypeError(op, fmt.Sprintf("%s has disallowed type %T", name, v), nil)
	}
}

func coerceArmed(op string, v any) (*int, error) {
	if v == nil {
		return nil, nil
	}
	n, err := coerceFlag(op, "ARMED", v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func coerceData(op string, v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	default:
		return nil, comserr.TypeError(op, fmt.Sprintf("DATA has disallowed type %T", v), nil)
	}
}

// FromMap builds a Message from a Fields mapping, coercing booleans to 0/1
// and rejecting any other non-integer value for the four required flags.
func FromMap(f Fields) (*Message, error) {
	const op = "FromMap"
	abort, err := coerceFlag(op, "ABORT", f.ABORT)
	if err != nil {
		return nil, err
	}
	qdm, err := coerceFlag(op, "QDM", f.QDM)
	if err != nil {
		return nil, err
	}
	stab, err := coerceFlag(op, "STAB", f.STAB)
	if err != nil {
		return nil, err
	}
	launch, err := coerceFlag(op, "LAUNCH", f.LAUNCH)
	if err != nil {
		return nil, err
	}
	armed, err := coerceArmed(op, f.ARMED)
	if err != nil {
		return nil, err
	}
	data, err := coerceData(op, f.DATA)
	if err != nil {
		return nil, err
	}
	return New(abort, qdm, stab, launch, armed, data), nil
}

// FromString parses JSON and applies the same coercion rules as FromMap.
// A malformed JSON document or a missing required field yields a
// comserr.Parse error; a present-but-wrongly-typed field yields
// comserr.Type, distinct from a parse failure per the wire contract.
func FromString(s string) (*Message, error) {
	const op = "FromString"
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, comserr.ParseError(op, "invalid JSON", err)
	}
	for _, req := range []string{"ABORT", "QDM", "STAB", "LAUNCH"} {
		if _, ok := raw[req]; !ok {
			return nil, comserr.ParseError(op, "missing required field "+req, nil)
		}
	}
	var data map[string]any
	if d, ok := raw["DATA"]; ok && d != nil {
		m, ok := d.(map[string]any)
		if !ok {
			return nil, comserr.TypeError(op, "DATA must be an object", nil)
		}
		data = m
	}
	return FromMap(Fields{
		ABORT:  raw["ABORT"],
		QDM:    raw["QDM"],
		STAB:   raw["STAB"],
		LAUNCH: raw["LAUNCH"],
		ARMED:  raw["ARMED"],
		DATA:   data,
	})
}

// ToString renders the Message as JSON with all six field names present,
// absent ARMED/DATA emitted as null.
func (m *Message) ToString() string {
	b, err := json.Marshal(m.toWire())
	if err != nil {
		// Marshal fails only when DATA holds a value encoding/json cannot
		// encode; New and FromMap do not check DATA values, so such a
		// Message panics here.
		panic(err)
	}
	return string(b)
}

func (m *Message) toWire() wireMessage {
	return wireMessage{
		ABORT:  m.abort,
		QDM:    m.qdm,
		STAB:   m.stab,
		LAUNCH: m.launch,
		ARMED:  m.armed,
		DATA:   m.data,
	}
}

// MarshalJSON lets a *Message be embedded directly in other JSON structures.
func (m *Message) MarshalJSON() ([]byte, error) { return json.Marshal(m.toWire()) }

// Construct dispatches to the correct constructor based on the dynamic
// type of v: a *Message is copied, a string is parsed with FromString, and
// a Fields or map[string]any is passed to FromMap.
func Construct(v any) (*Message, error) {
	switch x := v.(type) {
	case *Message:
		return New(x.abort, x.qdm, x.stab, x.launch, x.armed, x.data), nil
	case Message:
		return New(x.abort, x.qdm, x.stab, x.launch, x.armed, x.data), nil
	case string:
		return FromString(x)
	case Fields:
		return FromMap(x)
	case map[string]any:
		return fromRawMap(x)
	default:
		return nil, comserr.TypeError("Construct", fmt.Sprintf("unsupported input type %T", v), nil)
	}
}

func fromRawMap(raw map[string]any) (*Message, error) {
	var data map[string]any
	if d, ok := raw["DATA"]; ok && d != nil {
		m, ok := d.(map[string]any)
		if !ok {
			return nil, comserr.TypeError("Construct", "DATA must be an object", nil)
		}
		data = m
	}
	return FromMap(Fields{
		ABORT:  raw["ABORT"],
		QDM:    raw["QDM"],
		STAB:   raw["STAB"],
		LAUNCH: raw["LAUNCH"],
		ARMED:  raw["ARMED"],
		DATA:   data,
	})
}

// Accessors. All of these read the immutable snapshot taken at construction.

func (m *Message) Abort() bool  { return m.abort == 1 }
func (m *Message) QDM() bool    { return m.qdm == 1 }
func (m *Message) Stab() bool   { return m.stab == 1 }
func (m *Message) Launch() bool { return m.launch == 1 }

// Armed reports the ARMED flag and whether it was present at all.
func (m *Message) Armed() (value bool, present bool) {
	if m.armed == nil {
		return false, false
	}
	return *m.armed == 1, true
}

// Data returns the DATA payload, or nil if absent. The returned map is a
// defensive copy; mutating it does not affect the Message.
func (m *Message) Data() map[string]any {
	if m.data == nil {
		return nil
	}
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// Equal reports component-wise equality, ignoring DATA value identity but
// comparing its JSON-visible shape.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.abort != other.abort || m.qdm != other.qdm || m.stab != other.stab || m.launch != other.launch {
		return false
	}
	if (m.armed == nil) != (other.armed == nil) {
		return false
	}
	if m.armed != nil && *m.armed != *other.armed {
		return false
	}
	return m.ToString() == other.ToString()
}

func (m *Message) String() string { return m.ToString() }
