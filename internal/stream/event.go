// Package stream implements the backend-agnostic streaming JSON parser:
// line framing over arbitrary byte chunks, a fast non-JSON filter, flavor
// classification, and per-flavor message/session/progress extraction, all
// bounded to a fixed memory cap.
package stream

import "encoding/json"

// Event is one decoded JSON object from a backend's stdout. It is kept
// opaque and interpreted only through the accessor helpers below, rather
// than unmarshaled into a rigid per-backend schema — the four backends'
// event shapes overlap and drift, so best-effort extraction is the contract.
type Event map[string]any

// decodeEvent attempts to decode line as a JSON object or array. Anything
// that isn't a JSON object is still returned (arrays decode to an empty Event,
// callers treat that as "no fields available" rather than an error) so the
// caller can still advance past it.
func decodeEvent(line []byte) (Event, bool) {
	var raw any
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, false
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Event{}, true
	}
	return Event(obj), true
}

func (e Event) str(key string) (string, bool) {
	v, ok := e[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (e Event) has(key string) bool {
	_, ok := e[key]
	return ok
}

func (e Event) truthy(key string) bool {
	v, ok := e[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}

func (e Event) object(key string) (Event, bool) {
	v, ok := e[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Event(m), true
}
