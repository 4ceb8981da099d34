package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gandalf-/apocrypha/document"
)

func newTestStore() *Store {
	return New(document.New(), 0, zap.NewNop())
}

func TestEvaluateIndexAndAssign(t *testing.T) {
	s := newTestStore()

	body, closeConn := s.Evaluate([]string{"a", "=", "1"})
	require.False(t, closeConn, "unexpected connection close")
	require.Equal(t, "", body, "expected empty body for a successful assignment")

	body, closeConn = s.Evaluate([]string{"a"})
	require.False(t, closeConn, "unexpected connection close")
	require.Equal(t, "1\n", body)
}

func TestEvaluateCachesReads(t *testing.T) {
	s := newTestStore()
	s.Evaluate([]string{"a", "=", "1"})

	s.Evaluate([]string{"a"})
	require.Equal(t, 1, s.cache.Len(), "expected the read to populate the cache")

	s.Evaluate([]string{"a", "=", "2"})
	require.Equal(t, 0, s.cache.Len(), "expected a mutating query to clear the cache")
}

func TestEvaluateClientErrorDoesNotCloseConn(t *testing.T) {
	s := newTestStore()
	body, closeConn := s.Evaluate([]string{"a", "b", "=", "1", "+", "2"})
	if closeConn {
		t.Fatal("a ClientError should not close the connection")
	}
	if body == "" {
		t.Fatal("expected an error body")
	}
}

func TestWithLockGrantsAccessToRoot(t *testing.T) {
	s := newTestStore()
	s.Evaluate([]string{"a", "=", "1"})

	var dirty bool
	s.WithLock(func(root *document.Root) {
		dirty = root.Dirty()
	})
	if !dirty {
		t.Fatal("expected the root to be dirty after a mutation")
	}
}
