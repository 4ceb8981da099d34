// Package query implements the Apocrypha query language: the
// tokenizer/dispatcher and the recursive evaluator that interpret a
// token list as a navigation-and-mutation expression over a
// document.Root.
package query

import (
	"strings"

	"github.com/Gandalf-/apocrypha/datum"
	"github.com/Gandalf-/apocrypha/document"
)

// Result carries the textual response of a single query plus whether it
// belongs to the mutating operator class. Mutating is set purely from
// the operator used — independent of whether the query actually
// changed anything or returned an error — so the store clears its
// cache on any mutating query, regardless of success.
type Result struct {
	Lines    []string
	Mutating bool
}

// Engine evaluates queries against a document.Root. It holds no state
// of its own; all mutable state lives in the Root passed to Evaluate,
// which the caller must hold an exclusive lock on for the query's full
// lifetime.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// Evaluate interprets tokens against root. On a successful mutating
// query it advances root's generation and marks it dirty
// (document.Root.MarkMutated); on any other outcome root's Value is
// left byte-identical to how it was before the call (validate before
// mutate).
func (e *Engine) Evaluate(root *document.Root, tokens []string) (Result, error) {
	normalized := Normalize(tokens)
	p, err := parse(normalized)
	if err != nil {
		return Result{}, err
	}

	mutating := isMutating(p.op)
	lines, err := e.dispatch(root, p)
	if err != nil {
		return Result{Mutating: mutating}, err
	}
	if mutating {
		root.MarkMutated()
	}
	return Result{Lines: lines, Mutating: mutating}, nil
}

func isMutating(op Operator) bool {
	switch op {
	case OpSet, OpAdd, OpDel, OpRaw, OpPrune:
		return true
	default:
		return false
	}
}

func (e *Engine) dispatch(root *document.Root, p parsed) ([]string, error) {
	switch p.op {
	case OpIndex:
		return evalIndex(root, p.left)
	case OpSet:
		return evalAssign(root, p.left, p.payload)
	case OpAdd:
		return evalAppend(root, p.left, p.payload)
	case OpDel:
		return evalRemove(root, p.left, p.payload)
	case OpFind:
		return evalSearch(root, p.payload)
	case OpKeys:
		return evalKeys(root, p.left)
	case OpRaw:
		return evalRawSet(root, p.left, p.payload)
	case OpEdit:
		return evalEdit(root, p.left)
	case OpPrune:
		return evalPrune(root, p.left)
	default:
		return nil, clientErrorf("unknown operator %q", p.op)
	}
}

func evalIndex(root *document.Root, path []string) ([]string, error) {
	v, err := readPath(root.Value(), path)
	if err != nil {
		return nil, err
	}
	return datum.Lines(v), nil
}

func evalAssign(root *document.Root, path []string, values []string) ([]string, error) {
	mapping := root.Mapping()
	if len(values) == 0 {
		if err := deleteLeaf(mapping, path); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := storeLeaf(mapping, path, datum.NewList(values)); err != nil {
		return nil, err
	}
	return nil, nil
}

func evalAppend(root *document.Root, path []string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, clientErrorf("append requires at least one value")
	}
	mapping := root.Mapping()
	leaf, err := readPath(*mapping, path)
	if err != nil {
		return nil, err
	}

	var newLeaf datum.Datum
	switch leaf.Kind() {
	case datum.Absent:
		newLeaf = datum.NewList(values)
	case datum.String:
		s, _ := leaf.String()
		newLeaf = datum.NewList(append([]string{s}, values...))
	case datum.List:
		list, _ := leaf.List()
		newLeaf = datum.NewList(append(list, values...))
	case datum.Mapping:
		return nil, clientErrorf("cannot append to dict")
	}

	if err := storeLeaf(mapping, path, newLeaf); err != nil {
		return nil, err
	}
	return nil, nil
}

func evalRemove(root *document.Root, path []string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, clientErrorf("remove requires at least one value")
	}
	mapping := root.Mapping()
	leaf, err := readPath(*mapping, path)
	if err != nil {
		return nil, err
	}

	var newLeaf datum.Datum
	switch leaf.Kind() {
	case datum.String:
		s, _ := leaf.String()
		if len(values) != 1 || values[0] != s {
			return nil, clientErrorf("value not found")
		}
		newLeaf = datum.AbsentDatum
	case datum.List:
		list, _ := leaf.List()
		remaining, err := removeAll(list, values)
		if err != nil {
			return nil, err
		}
		newLeaf = datum.NewList(remaining)
	case datum.Absent:
		return nil, clientErrorf("value not found")
	case datum.Mapping:
		return nil, clientErrorf("cannot remove from dict")
	}

	if newLeaf.IsAbsent() {
		if err := deleteLeaf(mapping, path); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := storeLeaf(mapping, path, newLeaf); err != nil {
		return nil, err
	}
	return nil, nil
}

// removeAll deletes every occurrence of every value in targets from
// list, preserving the relative order of what remains. Any target not
// present in list is a ClientError.
func removeAll(list []string, targets []string) ([]string, error) {
	remove := make(map[string]bool, len(targets))
	for _, t := range targets {
		remove[t] = true
	}
	for t := range remove {
		found := false
		for _, v := range list {
			if v == t {
				found = true
				break
			}
		}
		if !found {
			return nil, clientErrorf("value not found")
		}
	}

	out := make([]string, 0, len(list))
	for _, v := range list {
		if remove[v] {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func evalSearch(root *document.Root, payload []string) ([]string, error) {
	if len(payload) != 1 {
		return nil, clientErrorf("search requires exactly one value")
	}
	return search(root.Value(), payload[0]), nil
}

func evalKeys(root *document.Root, path []string) ([]string, error) {
	v, err := readPath(root.Value(), path)
	if err != nil {
		return nil, err
	}
	keys, ok := v.Keys()
	if !ok {
		return nil, clientErrorf("not a dict")
	}
	return keys, nil
}

func evalRawSet(root *document.Root, path []string, payload []string) ([]string, error) {
	if len(payload) != 1 {
		return nil, clientErrorf("--set requires exactly one JSON value")
	}
	value, err := datum.UnmarshalJSON([]byte(payload[0]))
	if err != nil {
		return nil, clientErrorf("%s", err.Error())
	}
	if err := storeLeaf(root.Mapping(), path, value); err != nil {
		return nil, err
	}
	return nil, nil
}

func evalEdit(root *document.Root, path []string) ([]string, error) {
	v, err := readPath(root.Value(), path)
	if err != nil {
		return nil, err
	}
	raw, err := datum.MarshalJSON(v)
	if err != nil {
		return nil, &InternalError{Err: err}
	}
	return []string{string(raw)}, nil
}

func evalPrune(root *document.Root, path []string) ([]string, error) {
	if len(path) == 0 {
		return nil, clientErrorf("cannot delete the document root")
	}
	if err := deleteLeaf(root.Mapping(), path); err != nil {
		return nil, err
	}
	return nil, nil
}

// CanonicalKey renders a normalized token list into the string used as
// the query cache key.
func CanonicalKey(tokens []string) string {
	return strings.Join(Normalize(tokens), "\x1f")
}
