// Package stream turns a live HTTP response body into a cancellable, ordered sequence of
// byte chunks and provides the matching server-side emitter for text/event-stream responses.
//
// The decoder does not parse event framing: chunks are forwarded exactly as the network
// delivered them, and interpreting "data:" lines is left to the consumer.
package stream
