// Package backend defines the contract every transport backend satisfies and the pieces
// they share: default headers, the ordered multipart encoder, upload progress reporting,
// error classification and the shutdown guard.
//
// Backends return responses of any status. Validating the status is the caller's job.
package backend
