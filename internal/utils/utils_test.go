//nolint:nolintlint,revive // utils is a common and acceptable package name for utility functions.
package utils

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSafeUint64ToInt64 tests the SafeUint64ToInt64 function.
func TestSafeUint64ToInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    uint64
		expected int64
	}{
		{
			name:     "normal value",
			input:    100,
			expected: 100,
		},
		{
			name:     "zero value",
			input:    0,
			expected: 0,
		},
		{
			name:     "max int64 value",
			input:    9223372036854775807,
			expected: 9223372036854775807,
		},
		{
			name:     "value exceeding max int64",
			input:    9223372036854775808,
			expected: 9223372036854775807,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := SafeUint64ToInt64(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestIsFileExist tests the IsFileExist function.
func TestIsFileExist(t *testing.T) {
	t.Parallel()

	// Create a temporary file.
	tempFile, err := os.CreateTemp(t.TempDir(), "test_file")
	require.NoError(t, err)

	tempFile.Close()                 //nolint:errcheck,gosec // Test cleanup, error is not critical.
	defer os.Remove(tempFile.Name()) //nolint:errcheck // Test cleanup, error is not critical.

	// Test existing file.
	exists, err := IsFileExist(tempFile.Name())
	require.NoError(t, err)
	assert.True(t, exists)

	// Test non-existing file.
	exists, err = IsFileExist("/non/existing/file")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestIsTextContentType tests the IsTextContentType function.
func TestIsTextContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{
			name:        "text/plain",
			contentType: "text/plain",
			expected:    true,
		},
		{
			name:        "text/html with charset",
			contentType: "text/html; charset=utf-8",
			expected:    true,
		},
		{
			name:        "application/json",
			contentType: "application/json",
			expected:    true,
		},
		{
			name:        "application/problem+json",
			contentType: "application/problem+json",
			expected:    true,
		},
		{
			name:        "event stream with utf8 charset",
			contentType: "text/event-stream; charset=utf8",
			expected:    true,
		},
		{
			name:        "image/jpeg",
			contentType: "image/jpeg",
			expected:    false,
		},
		{
			name:        "text with invalid charset",
			contentType: "text/plain; charset=invalid",
			expected:    false,
		},
		{
			name:        "invalid content type",
			contentType: "invalid/type",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := IsTextContentType(tt.contentType)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestMap tests the Map function.
func TestMap(t *testing.T) {
	t.Parallel()

	// Test with string slice.
	input := []string{"hello", "world"}
	result := Map(input, strings.ToUpper)
	expected := []string{"HELLO", "WORLD"}
	assert.Equal(t, expected, result)

	// Test with empty slice.
	empty := []string{}
	result = Map(empty, strings.ToUpper)
	assert.Empty(t, result)
}

// TestSingleLine tests the SingleLine function.
func TestSingleLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already single line",
			input:    `{"model":"gpt"}`,
			expected: `{"model":"gpt"}`,
		},
		{
			name:     "pretty printed json",
			input:    "{\n  \"model\": \"gpt\",\n  \"stream\": true\n}\n",
			expected: `{ "model": "gpt", "stream": true}`,
		},
		{
			name:     "windows line endings",
			input:    "a\r\nb",
			expected: "ab",
		},
		{
			name:     "collapses spaces",
			input:    "  a    b  ",
			expected: "a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, SingleLine(tt.input))
		})
	}
}

// TestTruncate tests the Truncate function.
func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{
			name:     "shorter than limit",
			input:    "hello",
			limit:    10,
			expected: "hello",
		},
		{
			name:     "exactly the limit",
			input:    "hello",
			limit:    5,
			expected: "hello",
		},
		{
			name:     "longer than limit",
			input:    "hello world",
			limit:    5,
			expected: "hello" + TruncationSuffix,
		},
		{
			name:     "counts runes, not bytes",
			input:    "привет мир",
			limit:    6,
			expected: "привет" + TruncationSuffix,
		},
		{
			name:     "non-positive limit disables truncation",
			input:    "hello",
			limit:    0,
			expected: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Truncate(tt.input, tt.limit))
		})
	}
}

// TestLogPayload tests the LogPayload function.
func TestLogPayload(t *testing.T) {
	t.Parallel()

	assert.Empty(t, LogPayload(nil, 200))
	assert.Equal(t, "ab", LogPayload([]byte("a\nb"), 200))

	long := strings.Repeat("x", 500)
	result := LogPayload([]byte(long), 200)
	assert.Equal(t, strings.Repeat("x", 200)+TruncationSuffix, result)
	assert.NotContains(t, result, "\n")

	assert.Equal(t, "a\uFFFDb", LogPayload([]byte{'a', 0xff, 'b'}, 200))
}

// TestUnescapeURL tests the UnescapeURL function.
func TestUnescapeURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.com/привет", UnescapeURL("https://example.com/%D0%BF%D1%80%D0%B8%D0%B2%D0%B5%D1%82"))
	assert.Equal(t, "https://example.com/%zz", UnescapeURL("https://example.com/%zz"))
}

// TestIsEventStreamContentType tests the IsEventStreamContentType function.
func TestIsEventStreamContentType(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEventStreamContentType("text/event-stream"))
	assert.True(t, IsEventStreamContentType("text/event-stream; charset=utf8"))
	assert.False(t, IsEventStreamContentType("text/plain"))
	assert.False(t, IsEventStreamContentType(""))
}
