package stream

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

var errBodyClosed = errors.New("read on closed body")

// fakeBody is a network body driven by the test: every value sent on feed becomes the result
// of one Read, closing feed ends the body with endErr, and Close unblocks a pending Read.
type fakeBody struct {
	feed      chan []byte
	endErr    error
	closed    chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

func newFakeBody(buffer int, endErr error) *fakeBody {
	if endErr == nil {
		endErr = io.EOF
	}

	return &fakeBody{
		feed:   make(chan []byte, buffer),
		endErr: endErr,
		closed: make(chan struct{}),
	}
}

// newPreparedBody returns a body that yields chunks one per Read and then endErr.
func newPreparedBody(endErr error, chunks ...string) *fakeBody {
	body := newFakeBody(len(chunks), endErr)

	for _, chunk := range chunks {
		body.feed <- []byte(chunk)
	}

	close(body.feed)

	return body
}

func (b *fakeBody) Read(p []byte) (int, error) {
	select {
	case chunk, ok := <-b.feed:
		if !ok {
			return 0, b.endErr
		}

		return copy(p, chunk), nil
	case <-b.closed:
		return 0, errBodyClosed
	}
}

func (b *fakeBody) Close() error {
	b.closes.Add(1)
	b.closeOnce.Do(func() { close(b.closed) })

	return nil
}
