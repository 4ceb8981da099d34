// Package persist implements the write-behind persistence loop: while
// the document is dirty, it snapshots the root to bytes under the
// store's lock, then writes those bytes to disk outside the lock so a
// slow disk never blocks queries.
package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Gandalf-/apocrypha/document"
	"github.com/Gandalf-/apocrypha/libap/metrics"
	"github.com/Gandalf-/apocrypha/store"
)

// DefaultInterval is the flush period used when Loop is not given one,
// fixed at one second.
const DefaultInterval = time.Second

// PersistenceError wraps a failure to write or rename the snapshot.
// The dirty flag is left set so the next tick retries.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}
func (e *PersistenceError) Unwrap() error { return e.Err }

// Loop periodically flushes s to path. Call Run in its own goroutine;
// it returns when ctx is cancelled, after one final flush pass.
type Loop struct {
	s        *store.Store
	path     string
	interval time.Duration
	log      *zap.Logger
}

// New returns a Loop that flushes s to path every interval (interval
// <= 0 uses DefaultInterval).
func New(s *store.Store, path string, interval time.Duration, log *zap.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{s: s, path: path, interval: interval, log: log}
}

// Run blocks, flushing on every tick, until ctx is done, then performs
// one last flush before returning.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := l.flushIfDirty(); err != nil {
				l.log.Error("final flush failed", zap.Error(err))
			}
			return
		case <-ticker.C:
			if err := l.flushIfDirty(); err != nil {
				l.log.Error("flush failed, will retry", zap.Error(err))
			}
		}
	}
}

// flushIfDirty snapshots root under the store's lock only if dirty is
// set, then performs the actual disk I/O outside the lock.
func (l *Loop) flushIfDirty() error {
	var snapshot []byte
	var dirty bool
	var snapshotErr error

	l.s.WithLock(func(root *document.Root) {
		if !root.Dirty() {
			return
		}
		dirty = true
		snapshot, snapshotErr = root.Snapshot()
		if snapshotErr == nil {
			root.ClearDirty()
		}
	})

	if !dirty {
		return nil
	}
	if snapshotErr != nil {
		metrics.FlushesTotal.WithLabelValues("error").Inc()
		return &PersistenceError{Path: l.path, Err: snapshotErr}
	}

	start := time.Now()
	err := writeAtomic(l.path, snapshot)
	metrics.FlushDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FlushesTotal.WithLabelValues("error").Inc()
		// Leave root dirty again so the next tick retries: the
		// snapshot already cleared it optimistically above.
		l.s.WithLock(func(root *document.Root) { root.MarkDirty() })
		return &PersistenceError{Path: l.path, Err: err}
	}

	metrics.FlushesTotal.WithLabelValues("ok").Inc()
	return nil
}

// writeAtomic writes data to a temp file in dir's directory, fsyncs it,
// then renames it over path — the same directory so the rename is
// atomic on the target filesystem.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".apocrypha-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
