// Package app provides the command executors of the aigc-client CLI.
// Each executor builds a client facade from the configuration, performs one kind of call
// (plain request, upload, multipart upload, event stream or relay) and reports the outcome.
package app
