package query

import "github.com/Gandalf-/apocrypha/datum"

// readPath walks path through container without mutating anything.
// A missing key at any point yields AbsentDatum with no error (autoviv
// is a write-time-only concept). Attempting to index through a string
// or list is a ClientError.
func readPath(container datum.Datum, path []string) (datum.Datum, error) {
	cur := container
	for _, key := range path {
		switch cur.Kind() {
		case datum.Mapping:
			child, ok := cur.Get(key)
			if !ok {
				return datum.AbsentDatum, nil
			}
			cur = child
		case datum.Absent:
			return datum.AbsentDatum, nil
		default:
			return datum.AbsentDatum, clientErrorf("not a dict")
		}
	}
	return cur, nil
}

// setAtPath returns a new value for container with leaf stored at path,
// creating missing mapping ancestors along the way (autovivification).
// Every "not a dict" check along the path happens before any mutation
// at that level: a failure anywhere in the walk propagates up before a
// single Set call runs, so a rejected query never touches the tree.
func setAtPath(container datum.Datum, path []string, leaf datum.Datum) (datum.Datum, error) {
	if len(path) == 0 {
		return leaf, nil
	}
	if container.IsAbsent() {
		container = datum.NewMapping()
	}
	if container.Kind() != datum.Mapping {
		return datum.AbsentDatum, clientErrorf("not a dict")
	}

	key := path[0]
	child, _ := container.Get(key)
	newChild, err := setAtPath(child, path[1:], leaf)
	if err != nil {
		return datum.AbsentDatum, err
	}

	c := container
	c.Set(key, newChild)
	return c, nil
}

// isEmptyContainer reports whether d is a value that should not be
// stored: an absent value, or an empty mapping.
func isEmptyContainer(d datum.Datum) bool {
	return d.IsAbsent() || (d.Kind() == datum.Mapping && d.Len() == 0)
}

// deleteAtPath returns a new value for container with the value at path
// removed, recursively pruning any ancestor mapping that becomes empty
// as a result. Deleting a path that
// does not exist is a no-op, not an error. Indexing through a
// non-mapping ancestor is a ClientError.
func deleteAtPath(container datum.Datum, path []string) (datum.Datum, error) {
	if container.Kind() == datum.Absent {
		return container, nil
	}
	if container.Kind() != datum.Mapping {
		return datum.AbsentDatum, clientErrorf("not a dict")
	}

	key := path[0]
	if len(path) == 1 {
		c := container
		c.Delete(key)
		return c, nil
	}

	child, ok := container.Get(key)
	if !ok {
		return container, nil
	}
	newChild, err := deleteAtPath(child, path[1:])
	if err != nil {
		return datum.AbsentDatum, err
	}

	c := container
	if isEmptyContainer(newChild) {
		c.Delete(key)
	} else {
		c.Set(key, newChild)
	}
	return c, nil
}

// storeLeaf installs value at path under *root, autovivifying missing
// ancestors. A value that collapses to nothing (absent, or an empty
// mapping) is treated as a delete instead of a store, so callers never
// need to special-case it. An empty path may only be given a mapping,
// since the document root is always a mapping.
func storeLeaf(root *datum.Datum, path []string, value datum.Datum) error {
	if isEmptyContainer(value) {
		return deleteLeaf(root, path)
	}
	if len(path) == 0 && value.Kind() != datum.Mapping {
		return clientErrorf("the document root must be a dict")
	}
	newRoot, err := setAtPath(*root, path, value)
	if err != nil {
		return err
	}
	*root = newRoot
	return nil
}

// deleteLeaf installs the result of deleteAtPath(*root, path) back into
// *root. path must be non-empty: the root mapping itself is never
// deleted.
func deleteLeaf(root *datum.Datum, path []string) error {
	if len(path) == 0 {
		return clientErrorf("cannot delete the document root")
	}
	newRoot, err := deleteAtPath(*root, path)
	if err != nil {
		return err
	}
	*root = newRoot
	return nil
}
