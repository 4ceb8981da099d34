// Package datum defines the tagged value stored at every position in an
// Apocrypha document: a string, a list of strings, a mapping from string
// keys to further Datums, or absent.
package datum

import (
	"fmt"
	"strings"
)

// Kind tags the shape a Datum holds.
type Kind int

const (
	// Absent means no value exists at this position. It is only ever
	// produced as a transient read result; it is never stored.
	Absent Kind = iota
	String
	List
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case String:
		return "string"
	case List:
		return "list"
	case Mapping:
		return "dict"
	default:
		return "unknown"
	}
}

// Datum is the tagged value. Exactly one of the fields below is
// meaningful, selected by Kind. Mappings own their children and lists
// own their elements; there are no back-pointers, so every Datum is the
// root of a strict ownership tree.
type Datum struct {
	kind Kind
	str  string
	list []string
	dict map[string]Datum
	// keys preserves mapping insertion order for stable display and for
	// the ordered scan of entries that `@` relies on.
	keys []string
}

// AbsentDatum is the zero-value, transient "nothing here" result.
var AbsentDatum = Datum{kind: Absent}

// NewString builds a string Datum.
func NewString(s string) Datum {
	return Datum{kind: String, str: s}
}

// NewList builds a list Datum from the given elements: a singleton
// list collapses to its one element, and an empty list collapses to
// Absent.
func NewList(elems []string) Datum {
	switch len(elems) {
	case 0:
		return AbsentDatum
	case 1:
		return NewString(elems[0])
	default:
		cp := make([]string, len(elems))
		copy(cp, elems)
		return Datum{kind: List, list: cp}
	}
}

// NewMapping builds an empty mapping Datum.
func NewMapping() Datum {
	return Datum{kind: Mapping, dict: map[string]Datum{}}
}

// Kind reports the shape of d.
func (d Datum) Kind() Kind { return d.kind }

// IsAbsent reports whether d represents "nothing here".
func (d Datum) IsAbsent() bool { return d.kind == Absent }

// String returns the string value and true, iff d is a string Datum.
func (d Datum) String() (string, bool) {
	if d.kind != String {
		return "", false
	}
	return d.str, true
}

// List returns the list elements and true, iff d is a list Datum. The
// returned slice is a copy; callers may not mutate it to affect d.
func (d Datum) List() ([]string, bool) {
	if d.kind != List {
		return nil, false
	}
	cp := make([]string, len(d.list))
	copy(cp, d.list)
	return cp, true
}

// Keys returns the mapping's keys in insertion order, and true, iff d is
// a mapping Datum.
func (d Datum) Keys() ([]string, bool) {
	if d.kind != Mapping {
		return nil, false
	}
	cp := make([]string, len(d.keys))
	copy(cp, d.keys)
	return cp, true
}

// Get returns the child stored at key in a mapping Datum. It returns
// AbsentDatum, false if d is not a mapping or key is not present.
func (d Datum) Get(key string) (Datum, bool) {
	if d.kind != Mapping {
		return AbsentDatum, false
	}
	v, ok := d.dict[key]
	return v, ok
}

// Set inserts or overwrites key with value in a mapping Datum, mutating
// d in place. Set panics if d is not a mapping; callers must only call
// it on mapping Datums (built by NewMapping, or read back as mappings).
func (d *Datum) Set(key string, value Datum) {
	if d.kind != Mapping {
		panic("datum: Set called on non-mapping")
	}
	if _, exists := d.dict[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.dict[key] = value
}

// Delete removes key from a mapping Datum, mutating d in place. It is a
// no-op if d is not a mapping or key is absent.
func (d *Datum) Delete(key string) {
	if d.kind != Mapping {
		return
	}
	if _, exists := d.dict[key]; !exists {
		return
	}
	delete(d.dict, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Len reports the number of entries in a mapping, or elements in a
// list. It is 0 for string and absent Datums.
func (d Datum) Len() int {
	switch d.kind {
	case Mapping:
		return len(d.keys)
	case List:
		return len(d.list)
	default:
		return 0
	}
}

// Clone returns a deep copy of d; mutating the copy never affects d.
func Clone(d Datum) Datum {
	switch d.kind {
	case Mapping:
		nd := Datum{kind: Mapping, dict: make(map[string]Datum, len(d.dict)), keys: append([]string(nil), d.keys...)}
		for k, v := range d.dict {
			nd.dict[k] = Clone(v)
		}
		return nd
	case List:
		return Datum{kind: List, list: append([]string(nil), d.list...)}
	default:
		return d
	}
}

// Lines renders d the way the `index` query operator does: a blank
// output for absent, the bare string for a string, one element per line
// for a list, and a single-line dict rendering (RenderDict) for a
// mapping.
func Lines(d Datum) []string {
	switch d.kind {
	case Absent:
		return nil
	case String:
		return []string{d.str}
	case List:
		return append([]string(nil), d.list...)
	case Mapping:
		return []string{RenderDict(d)}
	default:
		return nil
	}
}

// RenderDict renders a mapping Datum as a single-quoted, Python-style
// dict literal: {'key': 'value', 'nested': {'a': 'b'}}; nested mappings
// recurse the same way, lists render as ['a', 'b'].
func RenderDict(d Datum) string {
	var b strings.Builder
	renderValue(&b, d)
	return b.String()
}

func renderValue(b *strings.Builder, d Datum) {
	switch d.kind {
	case String:
		fmt.Fprintf(b, "'%s'", escapeQuote(d.str))
	case List:
		b.WriteByte('[')
		for i, v := range d.list {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "'%s'", escapeQuote(v))
		}
		b.WriteByte(']')
	case Mapping:
		b.WriteByte('{')
		for i, k := range d.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "'%s': ", escapeQuote(k))
			renderValue(b, d.dict[k])
		}
		b.WriteByte('}')
	case Absent:
		// unreachable in a well-formed mapping; render nothing.
	}
}

func escapeQuote(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
