// Package client provides the uniform client facade over the transport backends.
// It applies default headers, turns non-2xx statuses into errors and writes one log record per call.
package client
