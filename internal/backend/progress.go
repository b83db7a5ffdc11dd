package backend

import (
	"context"
	"io"
	"sync"
)

// ProgressFunc receives upload progress in bytes. Pairs are monotonically non-decreasing.
// total is negative when the size is unknown.
type ProgressFunc func(total, completed int64)

// ProgressReader reports every Read to a ProgressFunc.
// Reporting stops once everything was read, the reader is closed or ctx ends.
type ProgressReader struct {
	ctx       context.Context //nolint:containedctx // Reads have no context of their own.
	reader    io.Reader
	total     int64
	report    ProgressFunc
	mu        sync.Mutex
	completed int64
	stopped   bool
}

// NewProgressReader wraps reader. A nil report makes it a plain pass-through.
func NewProgressReader(ctx context.Context, reader io.Reader, total int64, report ProgressFunc) *ProgressReader {
	return &ProgressReader{
		ctx:     ctx,
		reader:  reader,
		total:   total,
		report:  report,
		stopped: report == nil,
	}
}

// Read implements io.Reader.
func (r *ProgressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)

	r.mu.Lock()

	if r.stopped {
		r.mu.Unlock()

		return n, err
	}

	if r.ctx.Err() != nil {
		r.stopped = true
		r.mu.Unlock()

		return n, err
	}

	r.completed += int64(n)

	total, completed := r.total, r.completed
	finished := err != nil || (total >= 0 && completed >= total)

	if finished {
		r.stopped = true
	}

	r.mu.Unlock()

	// The callback runs unlocked so it may call Close or Len on this reader.
	if n > 0 || finished {
		r.report(total, completed)
	}

	return n, err
}

// Close stops reporting and closes the wrapped reader when it is an io.Closer.
func (r *ProgressReader) Close() error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	if closer, ok := r.reader.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Len returns the number of unread bytes when the total is known, for Content-Length.
func (r *ProgressReader) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.total < 0 {
		return 0
	}

	return int(r.total - r.completed)
}
