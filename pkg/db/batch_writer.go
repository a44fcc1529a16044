package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter groups writes into transactions of up to size callbacks. A
// failing callback rolls back its whole batch; later batches still run.
type BatchWriter struct {
	db   *sql.DB
	size int
	in   chan WriteFunc
	done chan struct{}

	closeMu sync.RWMutex
	closed  bool

	// OnError, when set, is called from the writer goroutine for every failed batch.
	OnError func(error)

	errMu     sync.Mutex
	firstErr  error
	committed atomic.Int64
}

// NewBatchWriter starts a writer flushing every size submissions and, when
// flushInterval is positive, on that period.
func NewBatchWriter(db *sql.DB, size int, flushInterval time.Duration) *BatchWriter {
	if size <= 0 {
		size = 10
	}
	bw := &BatchWriter{
		db:   db,
		size: size,
		in:   make(chan WriteFunc, size),
		done: make(chan struct{}),
	}
	go bw.run(flushInterval)
	return bw
}

// Submit enqueues w. It blocks while the writer is busy unless ctx ends first.
func (bw *BatchWriter) Submit(ctx context.Context, w WriteFunc) error {
	bw.closeMu.RLock()
	defer bw.closeMu.RUnlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	select {
	case bw.in <- w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Committed returns how many callbacks have been committed.
func (bw *BatchWriter) Committed() int64 { return bw.committed.Load() }

func (bw *BatchWriter) run(interval time.Duration) {
	defer close(bw.done)

	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	batch := make([]WriteFunc, 0, bw.size)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := bw.commit(batch); err != nil {
			bw.recordErr(err)
		} else {
			bw.committed.Add(int64(len(batch)))
		}
		batch = make([]WriteFunc, 0, bw.size)
	}

	for {
		select {
		case w, ok := <-bw.in:
			if !ok {
				flush()
				return
			}
			batch = append(batch, w)
			if len(batch) >= bw.size {
				flush()
			}
		case <-tick:
			flush()
		}
	}
}

func (bw *BatchWriter) commit(batch []WriteFunc) error {
	// Batches already accepted are finished even when the submitter's ctx ends.
	ctx := context.Background()
	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return fmt.Errorf("batch of %d rolled back: %w", len(batch), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) recordErr(err error) {
	bw.errMu.Lock()
	if bw.firstErr == nil {
		bw.firstErr = err
	}
	bw.errMu.Unlock()
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

// Close flushes pending writes, waits for them, and returns the first batch
// error. Closing twice returns ErrBatchWriterClosed.
func (bw *BatchWriter) Close() error {
	bw.closeMu.Lock()
	if bw.closed {
		bw.closeMu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	close(bw.in)
	bw.closeMu.Unlock()

	<-bw.done
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.firstErr
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
