package datum

import "testing"

func TestNewListCollapse(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		kind Kind
	}{
		{"empty", nil, Absent},
		{"singleton", []string{"a"}, String},
		{"multi", []string{"a", "b"}, List},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NewList(c.in)
			if got.Kind() != c.kind {
				t.Fatalf("NewList(%v).Kind() = %v, want %v", c.in, got.Kind(), c.kind)
			}
		})
	}
}

func TestMappingSetGetDelete(t *testing.T) {
	m := NewMapping()
	m.Set("a", NewString("1"))
	m.Set("b", NewString("2"))

	v, ok := m.Get("a")
	if !ok {
		t.Fatal("expected a to be present")
	}
	if s, _ := v.String(); s != "1" {
		t.Fatalf("got %q, want 1", s)
	}

	keys, _ := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected key order: %v", keys)
	}

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Fatal("expected a to be gone")
	}
	keys, _ = m.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("unexpected keys after delete: %v", keys)
	}
}

func TestSetOnNonMappingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic setting on a non-mapping Datum")
		}
	}()
	s := NewString("x")
	s.Set("a", NewString("b"))
}

func TestLines(t *testing.T) {
	cases := []struct {
		name string
		d    Datum
		want []string
	}{
		{"absent", AbsentDatum, nil},
		{"string", NewString("x"), []string{"x"}},
		{"list", NewList([]string{"a", "b"}), []string{"a", "b"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Lines(c.d)
			if len(got) != len(c.want) {
				t.Fatalf("Lines() = %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("Lines()[%d] = %q, want %q", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestRenderDict(t *testing.T) {
	m := NewMapping()
	m.Set("a", NewString("1"))
	m.Set("b", NewList([]string{"x", "y"}))

	got := RenderDict(m)
	want := "{'a': '1', 'b': ['x', 'y']}"
	if got != want {
		t.Fatalf("RenderDict() = %q, want %q", got, want)
	}
}

func TestRenderDictEscapesQuotes(t *testing.T) {
	m := NewMapping()
	m.Set("a", NewString("it's"))
	got := RenderDict(m)
	want := `{'a': 'it\'s'}`
	if got != want {
		t.Fatalf("RenderDict() = %q, want %q", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMapping()
	m.Set("a", NewString("1"))

	cp := Clone(m)
	cp.Set("a", NewString("2"))

	v, _ := m.Get("a")
	s, _ := v.String()
	if s != "1" {
		t.Fatalf("mutating the clone affected the original: got %q", s)
	}
}

func TestLen(t *testing.T) {
	if NewString("x").Len() != 0 {
		t.Fatal("string Len should be 0")
	}
	if NewList([]string{"a", "b", "c"}).Len() != 3 {
		t.Fatal("list Len should be 3")
	}
	m := NewMapping()
	m.Set("a", NewString("1"))
	if m.Len() != 1 {
		t.Fatal("mapping Len should be 1")
	}
}
