// Package version exposes build metadata of the aigc-client binary.
package version
