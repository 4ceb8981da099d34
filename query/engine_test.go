package query

import (
	"errors"
	"testing"

	"github.com/Gandalf-/apocrypha/document"
)

func newRoot() *document.Root {
	return document.New()
}

func eval(t *testing.T, root *document.Root, tokens ...string) Result {
	t.Helper()
	e := New()
	res, err := e.Evaluate(root, tokens)
	if err != nil {
		t.Fatalf("Evaluate(%v) returned error: %v", tokens, err)
	}
	return res
}

func evalErr(t *testing.T, root *document.Root, tokens ...string) error {
	t.Helper()
	e := New()
	_, err := e.Evaluate(root, tokens)
	if err == nil {
		t.Fatalf("Evaluate(%v) expected an error, got none", tokens)
	}
	return err
}

func TestIndexOnMissingPathIsEmpty(t *testing.T) {
	root := newRoot()
	res := eval(t, root, "a", "b")
	if len(res.Lines) != 0 {
		t.Fatalf("expected no output, got %v", res.Lines)
	}
}

func TestAssignAndIndex(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "=", "1")
	res := eval(t, root, "a", "b")
	if len(res.Lines) != 1 || res.Lines[0] != "1" {
		t.Fatalf("got %v, want [1]", res.Lines)
	}
	if root.Generation() != 1 {
		t.Fatalf("expected generation 1, got %d", root.Generation())
	}
}

func TestAssignMultipleValuesStoresList(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1", "2", "3")
	res := eval(t, root, "a")
	want := []string{"1", "2", "3"}
	if len(res.Lines) != len(want) {
		t.Fatalf("got %v, want %v", res.Lines, want)
	}
	for i := range want {
		if res.Lines[i] != want[i] {
			t.Fatalf("got %v, want %v", res.Lines, want)
		}
	}
}

func TestAssignNoValuesDeletes(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1")
	eval(t, root, "a", "=")
	res := eval(t, root, "a")
	if len(res.Lines) != 0 {
		t.Fatalf("expected the key to be gone, got %v", res.Lines)
	}
}

func TestAssignAutovivifiesAncestors(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "c", "=", "x")
	res := eval(t, root, "a", "b", "c")
	if len(res.Lines) != 1 || res.Lines[0] != "x" {
		t.Fatalf("got %v, want [x]", res.Lines)
	}
}

func TestAppendToAbsentCreatesValue(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "+", "1")
	res := eval(t, root, "a")
	if len(res.Lines) != 1 || res.Lines[0] != "1" {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestAppendToStringPromotesToList(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1")
	eval(t, root, "a", "+", "2")
	res := eval(t, root, "a")
	want := []string{"1", "2"}
	if len(res.Lines) != 2 || res.Lines[0] != want[0] || res.Lines[1] != want[1] {
		t.Fatalf("got %v, want %v", res.Lines, want)
	}
}

func TestAppendToDictIsClientError(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "=", "1")
	err := evalErr(t, root, "a", "+", "x")
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a ClientError, got %v (%T)", err, err)
	}
}

func TestRemoveLastElementDeletesKey(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1")
	eval(t, root, "a", "-", "1")
	res := eval(t, root, "a")
	if len(res.Lines) != 0 {
		t.Fatalf("expected key to be gone, got %v", res.Lines)
	}
}

func TestRemoveFromListKeepsRemainder(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1", "2", "3")
	eval(t, root, "a", "-", "2")
	res := eval(t, root, "a")
	want := []string{"1", "3"}
	if len(res.Lines) != 2 || res.Lines[0] != want[0] || res.Lines[1] != want[1] {
		t.Fatalf("got %v, want %v", res.Lines, want)
	}
}

func TestRemoveMissingValueIsClientError(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1")
	evalErr(t, root, "a", "-", "not-there")
}

func TestDashAliasesWork(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "-s", `"1"`)
	res := eval(t, root, "a", "b")
	if len(res.Lines) != 1 || res.Lines[0] != "1" {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestKeysOnMapping(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1")
	eval(t, root, "b", "=", "2")
	res := eval(t, root, "--keys")
	want := []string{"a", "b"}
	if len(res.Lines) != 2 || res.Lines[0] != want[0] || res.Lines[1] != want[1] {
		t.Fatalf("got %v, want %v", res.Lines, want)
	}
}

func TestKeysOnNonMappingIsClientError(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1")
	evalErr(t, root, "a", "--keys")
}

func TestSearchFindsStringMatch(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "target")
	eval(t, root, "b", "=", "other")
	res := eval(t, root, "@", "target")
	if len(res.Lines) != 1 || res.Lines[0] != "a" {
		t.Fatalf("got %v, want [a]", res.Lines)
	}
}

func TestSearchFindsListMember(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "x", "target", "y")
	res := eval(t, root, "@", "target")
	if len(res.Lines) != 1 || res.Lines[0] != "a" {
		t.Fatalf("got %v, want [a]", res.Lines)
	}
}

func TestSearchIsOneLevelOnly(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "=", "target")
	res := eval(t, root, "@", "target")
	if len(res.Lines) != 0 {
		t.Fatalf("expected no match at the top level, got %v", res.Lines)
	}
}

func TestRawSetStoresJSONStructure(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "--set", `{"x": "1", "y": ["2", "3"]}`)
	res := eval(t, root, "a", "x")
	if len(res.Lines) != 1 || res.Lines[0] != "1" {
		t.Fatalf("got %v", res.Lines)
	}
	res = eval(t, root, "a", "y")
	want := []string{"2", "3"}
	if len(res.Lines) != 2 || res.Lines[0] != want[0] || res.Lines[1] != want[1] {
		t.Fatalf("got %v, want %v", res.Lines, want)
	}
}

func TestRawSetMalformedJSONIsClientError(t *testing.T) {
	root := newRoot()
	evalErr(t, root, "a", "--set", `{not json`)
}

func TestEditRendersJSON(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "x", "=", "1")
	res := eval(t, root, "a", "--edit")
	if len(res.Lines) != 1 {
		t.Fatalf("expected one line, got %v", res.Lines)
	}
	if res.Lines[0] != `{"x":"1"}` {
		t.Fatalf("got %q", res.Lines[0])
	}
}

func TestPruneDeletesSubtree(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "=", "1")
	eval(t, root, "a", "--del")
	res := eval(t, root, "a")
	if len(res.Lines) != 0 {
		t.Fatalf("expected a to be gone, got %v", res.Lines)
	}
}

func TestPruneRootIsClientError(t *testing.T) {
	root := newRoot()
	evalErr(t, root, "--del")
}

func TestEmptyContainerIsPrunedFromAncestor(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "=", "1")
	eval(t, root, "a", "b", "=")

	res := eval(t, root, "--keys")
	if len(res.Lines) != 0 {
		t.Fatalf("expected the now-empty 'a' mapping to have been pruned, got %v", res.Lines)
	}
}

func TestMultipleOperatorsIsClientError(t *testing.T) {
	root := newRoot()
	evalErr(t, root, "a", "=", "1", "+", "2")
}

func TestReadOnlyQueryLeavesGenerationUnchanged(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "=", "1")
	gen := root.Generation()
	eval(t, root, "a")
	if root.Generation() != gen {
		t.Fatalf("expected generation to stay at %d, got %d", gen, root.Generation())
	}
}

func TestFailedMutationLeavesRootUnchanged(t *testing.T) {
	root := newRoot()
	eval(t, root, "a", "b", "=", "1") // a is a dict: {b: 1}
	evalErr(t, root, "a", "+", "x")   // appending to a dict is a ClientError

	res := eval(t, root, "a", "b")
	if len(res.Lines) != 1 || res.Lines[0] != "1" {
		t.Fatalf("expected root unchanged at a.b=1, got %v", res.Lines)
	}
	if root.Generation() != 1 {
		t.Fatalf("expected generation to stay at 1 after a failed mutation, got %d", root.Generation())
	}
}

func TestCanonicalKeyNormalizesAliases(t *testing.T) {
	a := CanonicalKey([]string{"a", "-k"})
	b := CanonicalKey([]string{"a", "--keys"})
	if a != b {
		t.Fatalf("expected aliased and long-form tokens to produce the same key: %q vs %q", a, b)
	}
}

func TestOperatorName(t *testing.T) {
	if got := OperatorName([]string{"a"}); got != "index" {
		t.Fatalf("got %q, want index", got)
	}
	if got := OperatorName([]string{"a", "=", "1"}); got != "=" {
		t.Fatalf("got %q, want =", got)
	}
	if got := OperatorName([]string{"a", "=", "1", "+", "2"}); got != "invalid" {
		t.Fatalf("got %q, want invalid", got)
	}
}
