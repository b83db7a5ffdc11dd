package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/oshokin/aigc-client/internal/model"
)

// ChunkSize is the size of the buffer handed to each body Read.
// A chunk is whatever a single Read returned, so chunks are never larger than this.
const ChunkSize = 32 << 10

// Source is an opened response whose body has not been read yet.
type Source struct {
	StatusCode int
	Header     model.Header
	Body       io.ReadCloser
}

// FailureFunc receives the fully drained response of a rejected stream.
type FailureFunc func(resp *model.Response)

// Stream is a single-producer ordered sequence of body chunks.
// The producer goroutine blocks until the consumer takes each chunk.
type Stream struct {
	chunks   chan []byte
	finished chan struct{}
	cancel   context.CancelFunc

	body        io.Closer
	releaseOnce sync.Once

	state atomic.Int32

	mu  sync.Mutex
	err error
}

// Open starts consuming src and returns immediately.
//
// When the status is not successful the body is drained, onFailure is invoked once with the
// full response and the stream ends Failed without producing chunks. Otherwise chunks are
// forwarded in arrival order until end of body (Completed), a read error (Failed),
// or cancellation of ctx or Close (Canceled). The body is closed exactly once.
func Open(ctx context.Context, src Source, onFailure FailureFunc) *Stream {
	if src.Body == nil {
		src.Body = http.NoBody
	}

	ctx, cancel := context.WithCancel(ctx)

	s := &Stream{
		chunks:   make(chan []byte),
		finished: make(chan struct{}),
		cancel:   cancel,
		body:     src.Body,
	}

	s.state.Store(int32(StateOpening))

	go s.run(ctx, src, onFailure)

	return s
}

// Chunks returns the channel chunks are delivered on. It is closed when the stream ends.
func (s *Stream) Chunks() <-chan []byte {
	return s.chunks
}

// Next returns the next chunk. It reports false once the stream has ended.
// If ctx ends first the stream is canceled.
func (s *Stream) Next(ctx context.Context) ([]byte, bool) {
	select {
	case chunk, ok := <-s.chunks:
		return chunk, ok
	case <-ctx.Done():
		s.cancel()

		return nil, false
	}
}

// Err returns the error the stream ended with.
// It is nil while streaming and after completion.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// State returns the current lifecycle state.
func (s *Stream) State() State {
	return State(s.state.Load())
}

// Done is closed once the stream has reached a terminal state and released its body.
func (s *Stream) Done() <-chan struct{} {
	return s.finished
}

// Close cancels the stream and waits until the body is released.
// It is safe to call more than once and after the stream has ended.
// It must not be called from the failure handler.
func (s *Stream) Close() error {
	s.cancel()
	<-s.finished

	return nil
}

// Collect reads the remaining chunks and returns them concatenated.
func (s *Stream) Collect(ctx context.Context) ([]byte, error) {
	var data []byte

	for {
		chunk, ok := s.Next(ctx)
		if !ok {
			break
		}

		data = append(data, chunk...)
	}

	if err := ctx.Err(); err != nil {
		return data, err
	}

	return data, s.Err()
}

// All returns an iterator over the remaining chunks.
// Breaking out of the loop closes the stream. A non-nil terminal error is yielded last.
func (s *Stream) All() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for chunk := range s.chunks {
			if !yield(chunk, nil) {
				_ = s.Close()

				return
			}
		}

		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (s *Stream) run(ctx context.Context, src Source, onFailure FailureFunc) {
	defer close(s.finished)
	defer close(s.chunks)

	// Closing the body is what unblocks a Read stuck on the network.
	stop := context.AfterFunc(ctx, s.release)
	defer stop()

	if !model.IsSuccessStatus(src.StatusCode) {
		s.reject(src, onFailure)

		return
	}

	s.state.Store(int32(StateStreaming))

	for {
		if ctx.Err() != nil {
			s.interrupt(ctx)

			return
		}

		buf := make([]byte, ChunkSize)

		n, err := src.Body.Read(buf)
		if n > 0 {
			select {
			case s.chunks <- buf[:n]:
			case <-ctx.Done():
				s.interrupt(ctx)

				return
			}
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			s.finish(StateCompleted, nil)
		case ctx.Err() != nil:
			s.interrupt(ctx)
		default:
			s.finish(StateFailed, model.NewStreamFailure("read stream", err))
		}

		return
	}
}

func (s *Stream) reject(src Source, onFailure FailureFunc) {
	data, readErr := io.ReadAll(src.Body)

	resp := &model.Response{
		StatusCode: src.StatusCode,
		Header:     src.Header,
		Body:       data,
	}

	if onFailure != nil {
		onFailure(resp)
	}

	var cause error = model.NewHTTPStatusError(resp)
	if readErr != nil {
		cause = fmt.Errorf("%w (error body truncated: %w)", cause, readErr)
	}

	s.finish(StateFailed, model.NewStreamFailure("open stream", cause))
}

// interrupt ends a stream whose context is done. An expired deadline is a failure;
// anything else means the consumer walked away.
func (s *Stream) interrupt(ctx context.Context) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.finish(StateFailed, model.NewStreamFailure("read stream", ctx.Err()))

		return
	}

	s.finish(StateCanceled, ctx.Err())
}

func (s *Stream) finish(state State, err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.release()
	s.state.Store(int32(state))
	s.cancel()
}

func (s *Stream) release() {
	s.releaseOnce.Do(func() {
		_ = s.body.Close()
	})
}
