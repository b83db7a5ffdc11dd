// Package logger wraps zap with a process-wide sugared logger and an atomic level.
// A logger can be bound to a context with extra key-value pairs or a name segment,
// and every helper reads the logger back from the context, falling back to the global one.
// The client call log writes through LogKV at a configurable level.
package logger
