package query

import "testing"

func TestNormalizeExpandsAliases(t *testing.T) {
	got := Normalize([]string{"a", "-k"})
	want := []string{"a", "--keys"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseNoOperatorIsIndex(t *testing.T) {
	p, err := parse([]string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.op != OpIndex {
		t.Fatalf("got op %q, want index", p.op)
	}
	if len(p.left) != 2 {
		t.Fatalf("got left %v", p.left)
	}
}

func TestParseSplitsOnOperator(t *testing.T) {
	p, err := parse([]string{"a", "b", "=", "1", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.op != OpSet {
		t.Fatalf("got op %q, want =", p.op)
	}
	if len(p.left) != 2 || len(p.payload) != 2 {
		t.Fatalf("got left %v payload %v", p.left, p.payload)
	}
}

func TestParseEmptyIsClientError(t *testing.T) {
	if _, err := parse(nil); err == nil {
		t.Fatal("expected an error for an empty query")
	}
}

func TestParseMultipleOperatorsIsClientError(t *testing.T) {
	if _, err := parse([]string{"a", "=", "1", "-", "2"}); err == nil {
		t.Fatal("expected an error for multiple operators")
	}
}
