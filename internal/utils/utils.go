package utils

import (
	"math"
	"mime"
	"net/url"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// TruncationSuffix marks a payload that was cut to fit a log line.
	TruncationSuffix = "..."

	// EventStreamMimeType is the MIME type of a server-sent event stream.
	EventStreamMimeType = "text/event-stream"

	// JSONMimeType is the MIME type of a JSON document.
	JSONMimeType = "application/json"
)

var (
	// textContentTypePatterns is a slice of regular expressions that match content types
	// considered to be text-based. This includes "text/*", "application/json",
	// "application/*+json" and "application/x-www-form-urlencoded".
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	textContentTypePatterns = []*regexp.Regexp{
		regexp.MustCompile("^text/.+"),
		regexp.MustCompile("^application/json$"),
		regexp.MustCompile(`^application/[a-z0-9.\-]+\+json$`),
		regexp.MustCompile("^application/x-www-form-urlencoded$"),
	}

	//nolint:gochecknoglobals // Immutable, pre-compiled pattern.
	repeatedSpacesPattern = regexp.MustCompile(`\s{2,}`)
)

// SafeUint64ToInt64 converts an uint64 value to an int64 safely,
// capping it at the maximum value of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// IsFileExist checks if a file exists at the given path.
func IsFileExist(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// IsTextContentType checks if the given content type represents a text-based format.
// It also checks that the charset, if present, is either "utf-8", "utf8" or "us-ascii".
func IsTextContentType(contentType string) bool {
	parsedType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if !pattern.MatchString(parsedType) {
			continue
		}

		charset := strings.ToLower(params["charset"])

		return charset == "" || charset == "utf-8" || charset == "utf8" || charset == "us-ascii"
	}

	return false
}

// IsEventStreamContentType reports whether the content type announces a server-sent event stream.
func IsEventStreamContentType(contentType string) bool {
	parsedType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return parsedType == EventStreamMimeType
}

// SingleLine removes line breaks and collapses runs of whitespace
// so the value fits on one structured log line.
func SingleLine(value string) string {
	value = strings.TrimSpace(value)
	value = strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(value)

	return repeatedSpacesPattern.ReplaceAllString(value, " ")
}

// Truncate cuts the value to at most maxRunes characters and appends TruncationSuffix
// when something was cut. A non-positive limit disables truncation.
func Truncate(value string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(value) <= maxRunes {
		return value
	}

	var (
		builder strings.Builder
		count   int
	)

	builder.Grow(maxRunes + len(TruncationSuffix))

	for _, r := range value {
		if count == maxRunes {
			break
		}

		builder.WriteRune(r)
		count++
	}

	builder.WriteString(TruncationSuffix)

	return builder.String()
}

// LogPayload turns raw bytes into a single-line, truncated string for logging.
// Invalid UTF-8 sequences are replaced so the log encoder never receives broken text.
func LogPayload(data []byte, maxRunes int) string {
	if len(data) == 0 {
		return ""
	}

	return Truncate(SingleLine(strings.ToValidUTF8(string(data), "�")), maxRunes)
}

// UnescapeURL returns the percent-decoded form of the URL, or the input if it cannot be decoded.
func UnescapeURL(rawURL string) string {
	unescaped, err := url.PathUnescape(rawURL)
	if err != nil {
		return rawURL
	}

	return unescaped
}

// Map applies a transformation function to each element of a slice and returns a new slice with the results.
func Map[E, S any](v []E, transformFunc func(E) S) []S {
	result := make([]S, len(v))
	for i := range v {
		result[i] = transformFunc(v[i])
	}

	return result
}
