package menu

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Committer persists one batch of translation updates atomically.
type Committer interface {
	CommitTranslations(ctx context.Context, updates []Update) error
}

// BatchWriter buffers translation updates and commits them in batches on a
// background goroutine.
type BatchWriter struct {
	mu          sync.Mutex
	buf         []Update
	cap         int
	flushTicker *time.Ticker
	closed      bool
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	commitCh  chan []Update
	committer Committer
	OnError   func(error)

	// errMu guards lastErr, the first commit error seen.
	errMu   sync.Mutex
	lastErr error
	written int
}

// NewBatchWriter creates a BatchWriter that commits through c whenever
// batchSize updates are buffered and, if flushInterval is positive, on that
// interval.
func NewBatchWriter(c Committer, batchSize int, flushInterval time.Duration) *BatchWriter {
	if batchSize <= 0 {
		batchSize = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:       make([]Update, 0, batchSize),
		cap:       batchSize,
		ctx:       ctx,
		cancel:    cancel,
		commitCh:  make(chan []Update, 2),
		committer: c,
	}

	bw.wg.Add(1)
	go bw.commitLoop()

	if flushInterval > 0 {
		bw.flushTicker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.tickLoop()
	}
	return bw
}

// Submit buffers an update.
func (bw *BatchWriter) Submit(u Update) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, u)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// flushLocked hands the buffer to the committer. bw.mu must be held; a full
// commit queue blocks submitters.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]Update, 0, bw.cap)

	select {
	case bw.commitCh <- batch:
	case <-bw.ctx.Done():
		bw.recordErr(fmt.Errorf("batch writer: dropping batch of %d updates due to context cancellation", len(batch)))
	}
}

func (bw *BatchWriter) recordErr(err error) {
	bw.errMu.Lock()
	if bw.lastErr == nil {
		bw.lastErr = err
	}
	bw.errMu.Unlock()
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

func (bw *BatchWriter) commitLoop() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		// Commits run detached so a closing writer still drains its queue.
		if err := bw.committer.CommitTranslations(context.Background(), batch); err != nil {
			bw.recordErr(fmt.Errorf("commit batch (%d updates): %w", len(batch), err))
			continue
		}
		bw.errMu.Lock()
		bw.written += len(batch)
		bw.errMu.Unlock()
	}
}

func (bw *BatchWriter) tickLoop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.flushTicker.C:
			bw.mu.Lock()
			bw.flushLocked()
			bw.mu.Unlock()
		}
	}
}

// Written returns how many updates have been committed.
func (bw *BatchWriter) Written() int {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.written
}

// Close flushes what is buffered, waits for pending commits and returns the
// first commit error.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.flushTicker != nil {
		bw.flushTicker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()
	close(bw.commitCh)
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
