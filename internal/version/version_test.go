package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestShort tests the Short function.
func TestShort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version, Short())
}

// TestDefaults tests the values used when the linker does not override them.
func TestDefaults(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Version, ".")
	assert.NotContains(t, Version, " ")
	assert.Equal(t, "none", Commit)
	assert.Equal(t, "unknown", BuildTime)
}

// TestFull tests that Full reflects link-time overrides.
func TestFull(t *testing.T) {
	// Not parallel: the build variables are package globals.
	originalVersion, originalCommit, originalBuildTime := Version, Commit, BuildTime

	t.Cleanup(func() {
		Version, Commit, BuildTime = originalVersion, originalCommit, originalBuildTime
	})

	Version, Commit, BuildTime = "1.2.3", "abc1234", "2025-01-02T03:04:05Z"

	assert.Equal(t, "1.2.3", Short())
	assert.Equal(t, "version: 1.2.3, commit: abc1234, built at: 2025-01-02T03:04:05Z", Full())
}
