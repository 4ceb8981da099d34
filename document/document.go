// Package document owns the Root: the single mapping-typed Datum that
// is the entire Apocrypha database, plus the bookkeeping (generation
// counter, dirty flag) the query engine and persistence loop share.
package document

import (
	"fmt"
	"os"

	"github.com/Gandalf-/apocrypha/datum"
)

// Root is the sole owner of the whole document tree. It is not safe
// for concurrent use on its own; callers (the server's per-query lock)
// must serialize access.
type Root struct {
	root       datum.Datum
	generation uint64
	dirty      bool
}

// New returns an empty Root, equivalent to a database that has never
// been written to.
func New() *Root {
	return &Root{root: datum.NewMapping()}
}

// Load reads path and constructs a Root from its contents. A missing or
// empty file yields an empty mapping. A present
// but malformed file, or one whose top-level JSON value is not an
// object, is a startup error: the caller should refuse to
// start rather than silently discard data.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return New(), nil
	}
	d, err := datum.UnmarshalJSON(data)
	if err != nil {
		return nil, err
	}
	if d.Kind() != datum.Mapping {
		return nil, fmt.Errorf("top-level JSON value is a %s, not an object", d.Kind())
	}
	return &Root{root: d}, nil
}

// Value returns the current root mapping Datum. The returned value must
// not be mutated directly; use Mapping/MarkMutated to change it.
func (r *Root) Value() datum.Datum {
	return r.root
}

// Mapping returns a pointer into the root mapping so the query engine
// can mutate it in place. It does not touch the generation counter;
// MarkMutated does that.
func (r *Root) Mapping() *datum.Datum {
	return &r.root
}

// MarkMutated increments the generation counter and sets dirty. The
// query engine calls this once, after a mutating query has validated
// and applied its change.
func (r *Root) MarkMutated() {
	r.generation++
	r.dirty = true
}

// Generation returns the current write generation.
func (r *Root) Generation() uint64 {
	return r.generation
}

// Dirty reports whether the root has unflushed mutations.
func (r *Root) Dirty() bool {
	return r.dirty
}

// ClearDirty is called by the persistence loop, under the same lock
// that guards queries, immediately after snapshotting the root to
// bytes.
func (r *Root) ClearDirty() {
	r.dirty = false
}

// MarkDirty is called by the persistence loop when a flush's disk I/O
// fails after the snapshot already cleared dirty, so the next tick
// retries on the next tick.
func (r *Root) MarkDirty() {
	r.dirty = true
}

// Snapshot serializes the current root to JSON bytes. It is called by
// the persistence loop while holding the lock, and does no I/O itself.
func (r *Root) Snapshot() ([]byte, error) {
	return datum.MarshalOrderedJSON(r.root)
}
