package query

import "github.com/Gandalf-/apocrypha/datum"

// search reports the keys, in mapping insertion order, of every
// top-level entry in root whose value is a string equal to target or a
// list containing target.
//
// Whether `@` should descend into nested mappings is ambiguous from
// observed behavior alone; this preserves the one-level behavior and
// only inspects root's direct entries, not their descendants. See
// DESIGN.md.
func search(root datum.Datum, target string) []string {
	var out []string
	keys, ok := root.Keys()
	if !ok {
		return out
	}
	for _, k := range keys {
		child, _ := root.Get(k)
		if matches(child, target) {
			out = append(out, k)
		}
	}
	return out
}

func matches(d datum.Datum, target string) bool {
	switch d.Kind() {
	case datum.String:
		s, _ := d.String()
		return s == target
	case datum.List:
		list, _ := d.List()
		for _, v := range list {
			if v == target {
				return true
			}
		}
		return false
	default:
		return false
	}
}
