package model

const (
	minSuccessStatus = 200
	maxSuccessStatus = 299
)

// Response is the canonical inbound response with a fully buffered body.
type Response struct {
	StatusCode int
	Header     Header
	Body       []byte
}

// IsSuccess reports whether the status is within 200..299.
func (r *Response) IsSuccess() bool {
	return IsSuccessStatus(r.StatusCode)
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// IsSuccessStatus reports whether the code is within 200..299.
func IsSuccessStatus(code int) bool {
	return code >= minSuccessStatus && code <= maxSuccessStatus
}
