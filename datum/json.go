package datum

import (
	"fmt"
	"sort"
	"strconv"

	apjson "github.com/Gandalf-/apocrypha/libap/json"
)

// MarshalJSON renders d as a compact JSON value: a string, an array of
// strings, or an object, recursing the same way for nested mappings.
// Used by the `--edit` operator and by the persistence snapshot.
func MarshalJSON(d Datum) ([]byte, error) {
	return apjson.Marshal(toJSONValue(d))
}

func toJSONValue(d Datum) any {
	switch d.kind {
	case String:
		return d.str
	case List:
		out := make([]any, len(d.list))
		for i, v := range d.list {
			out[i] = v
		}
		return out
	case Mapping:
		out := make(map[string]any, len(d.keys))
		for _, k := range d.keys {
			out[k] = toJSONValue(d.dict[k])
		}
		return out
	default:
		return nil
	}
}

// MarshalOrderedJSON renders a mapping Datum as a JSON object preserving
// key insertion order, used only for the persistence snapshot where a
// stable byte-for-byte diff across ticks with no intervening writes is
// desirable. Non-mapping Datums fall back to MarshalJSON.
func MarshalOrderedJSON(d Datum) ([]byte, error) {
	if d.kind != Mapping {
		return MarshalJSON(d)
	}
	buf := []byte{'{'}
	for i, k := range d.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := apjson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := MarshalOrderedJSON(d.dict[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// UnmarshalJSON parses raw JSON text into a Datum, coercing scalar
// types (numbers, booleans, null) into their textual form: everything
// that is not a JSON array or object becomes a string leaf. See
// DESIGN.md for why stringifying was chosen over preserving type.
func UnmarshalJSON(raw []byte) (Datum, error) {
	var v any
	if err := apjson.Unmarshal(raw, &v); err != nil {
		return AbsentDatum, fmt.Errorf("invalid json: %w", err)
	}
	return fromJSONValue(v), nil
}

func fromJSONValue(v any) Datum {
	switch t := v.(type) {
	case nil:
		return NewString("null")
	case string:
		return NewString(t)
	case bool:
		return NewString(strconv.FormatBool(t))
	case float64:
		return NewString(formatJSONNumber(t))
	case []any:
		elems := make([]string, 0, len(t))
		for _, e := range t {
			elems = append(elems, scalarString(e))
		}
		return NewList(elems)
	case map[string]any:
		m := NewMapping()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := fromJSONValue(t[k])
			if child.IsAbsent() || (child.Kind() == Mapping && child.Len() == 0) {
				continue
			}
			m.Set(k, child)
		}
		return m
	default:
		return NewString(fmt.Sprintf("%v", t))
	}
}

// scalarString coerces a JSON array element to a string the same way a
// leaf scalar is coerced; nested arrays/objects inside a list are
// flattened to their compact JSON form since a stored list may only
// hold strings.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatJSONNumber(t)
	default:
		b, err := apjson.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

func formatJSONNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
