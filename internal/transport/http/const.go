package http

import "time"

const (
	// DefaultTimeout bounds a whole call on the simple backends, including body transfer.
	DefaultTimeout = 300 * time.Second

	// DefaultStreamTimeout bounds a whole call on the streaming-oriented backend.
	// The server may hold the connection open while it generates incremental output.
	DefaultStreamTimeout = 600 * time.Second

	// DefaultMaxConnsPerHost is the soft per-host connection limit of pooled transports.
	DefaultMaxConnsPerHost = 1024

	// DefaultMaxLogLength caps each logged payload, in characters.
	DefaultMaxLogLength = 200

	// DefaultContentType is applied when the caller did not set Content-Type.
	DefaultContentType = "application/json"
)
