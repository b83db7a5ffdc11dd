package stream

import (
	"context"
	"errors"
	"net/http"

	"github.com/oshokin/aigc-client/internal/model"
)

// EventStreamContentType is the Content-Type of emitted event streams.
const EventStreamContentType = "text/event-stream; charset=utf8"

// WriteEventStream relays s to w, writing each chunk verbatim and flushing after it.
//
// Headers are only committed once the first chunk arrives, so a stream rejected upstream is
// answered with the upstream status and body instead. When ctx ends (typically because the
// downstream client disconnected) the upstream stream is canceled.
func WriteEventStream(ctx context.Context, w http.ResponseWriter, s *Stream) error {
	defer s.Close() //nolint:errcheck // Close never fails.

	first, ok := s.Next(ctx)
	if !ok {
		return writeRejection(ctx, w, s)
	}

	w.Header().Set("Content-Type", EventStreamContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	controller := http.NewResponseController(w)

	for chunk, ok := first, true; ok; chunk, ok = s.Next(ctx) {
		if _, err := w.Write(chunk); err != nil {
			return err
		}

		if err := controller.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.Err()
}

func writeRejection(ctx context.Context, w http.ResponseWriter, s *Stream) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.Err()

	var statusErr *model.HTTPStatusError
	if !errors.As(err, &statusErr) {
		// Empty but successful upstream stream, or a failure before any byte arrived.
		w.Header().Set("Content-Type", EventStreamContentType)

		if err != nil {
			w.WriteHeader(http.StatusBadGateway)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		return err
	}

	if contentType := statusErr.Header.Get(model.HeaderContentType); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(statusErr.Code)

	if _, writeErr := w.Write(statusErr.Body); writeErr != nil {
		return errors.Join(err, writeErr)
	}

	return err
}
