package model

import (
	"encoding/json"
)

// rawObject is a decoded JSON object that keeps every member raw. Layer and
// Variable unmarshalling pulls the keys it understands out of one of these and
// keeps whatever is left, so authored documents round-trip without dropping
// fields this version of the resolver does not know about.
type rawObject map[string]json.RawMessage

func decodeObject(b []byte) (rawObject, error) {
	var obj rawObject
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// take removes key from the object and decodes it into dst. A member that
// fails to decode is dropped from the object but dst is left untouched.
func (o rawObject) take(key string, dst any) bool {
	raw, ok := o[key]
	if !ok {
		return false
	}
	delete(o, key)
	if err := json.Unmarshal(raw, dst); err != nil {
		return false
	}
	return true
}

// takeRaw removes key and returns the raw member bytes.
func (o rawObject) takeRaw(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	if ok {
		delete(o, key)
	}
	return raw, ok
}

// rest returns the remaining members, or nil when none are left.
func (o rawObject) rest() map[string]json.RawMessage {
	if len(o) == 0 {
		return nil
	}
	return o
}

// mergeObject marshals v (which must marshal to a JSON object), overlays its
// members on top of extra, and returns the combined object. Members produced
// by v win over preserved extras with the same key.
func mergeObject(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(known)+len(extra))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func setIf[T comparable](obj map[string]any, key string, v T) {
	var zero T
	if v != zero {
		obj[key] = v
	}
}
