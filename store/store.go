// Package store wires together the query engine, the query cache, and
// the document root behind a single process-wide lock. The server and
// persistence loop are handed a *Store rather than reaching for
// package-level globals.
package store

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Gandalf-/apocrypha/cache"
	"github.com/Gandalf-/apocrypha/document"
	"github.com/Gandalf-/apocrypha/libap/metrics"
	"github.com/Gandalf-/apocrypha/query"
)

// Store serializes every query through one exclusive lock, giving
// per-query atomicity and a total order over observable queries.
type Store struct {
	mu     sync.Mutex
	root   *document.Root
	engine *query.Engine
	cache  *cache.Cache
	log    *zap.Logger
}

// New wraps root with a query engine and a cache bounded at cacheSize
// (0 uses cache.DefaultMaxEntries).
func New(root *document.Root, cacheSize int, log *zap.Logger) *Store {
	return &Store{
		root:   root,
		engine: query.New(),
		cache:  cache.New(cacheSize),
		log:    log,
	}
}

// Evaluate runs tokens to completion under the store's lock and returns
// the wire-format response body. closeConn is true only for an
// InternalError: the client gets a generic
// "error: internal" line and the connection is closed, but the server
// keeps running.
func (s *Store) Evaluate(tokens []string) (body string, closeConn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := query.CanonicalKey(tokens)
	opName := query.OperatorName(tokens)

	if lines, ok := s.cache.Get(key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		metrics.QueriesTotal.WithLabelValues(opName, "ok").Inc()
		return formatLines(lines), false
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	result, err := s.engine.Evaluate(s.root, tokens)
	if result.Mutating {
		s.cache.Clear()
		metrics.CacheSize.Set(0)
	}

	if err != nil {
		var internal *query.InternalError
		if errors.As(err, &internal) {
			s.log.Error("internal error evaluating query",
				zap.Strings("tokens", tokens), zap.Error(internal.Err))
			metrics.QueriesTotal.WithLabelValues(opName, "error").Inc()
			return "error: internal", true
		}
		if !query.IsClientError(err) {
			s.log.Warn("unclassified query error", zap.Strings("tokens", tokens), zap.Error(err))
		}
		metrics.QueriesTotal.WithLabelValues(opName, "error").Inc()
		return "error: " + err.Error(), false
	}

	metrics.QueriesTotal.WithLabelValues(opName, "ok").Inc()
	metrics.Generation.Set(float64(s.root.Generation()))

	if !result.Mutating {
		s.cache.Put(key, result.Lines)
		metrics.CacheSize.Set(float64(s.cache.Len()))
	}
	return formatLines(result.Lines), false
}

// WithLock runs fn with the store's lock held, giving the persistence
// loop a way to snapshot root and clear its dirty flag as one atomic
// step without the loop needing to know about queries or the cache.
func (s *Store) WithLock(fn func(root *document.Root)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.root)
}

func formatLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
