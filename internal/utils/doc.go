// Package utils provides a collection of helper functions and utilities for common tasks,
// such as log payload shaping, content type detection and user agent provisioning.
// It is designed to simplify repetitive operations and ensure consistency across the application.
package utils
