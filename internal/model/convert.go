package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyURL indicates that the request has no URL.
	ErrEmptyURL = errors.New("URL is empty")
	// ErrRelativeURL indicates that the request URL has no scheme or host.
	ErrRelativeURL = errors.New("URL is not absolute")
)

// ParseAbsoluteURL parses rawURL and requires a scheme and a host.
// Every failure matches ErrInvalidRequest.
func ParseAbsoluteURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptyURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRequest, ErrRelativeURL, rawURL)
	}

	return parsed, nil
}

// ToHTTPRequest converts a canonical request into a net/http request carrying body.
// A nil body sends no content.
func ToHTTPRequest(ctx context.Context, req Request, body io.Reader) (*http.Request, error) {
	parsed, err := req.ParseURL()
	if err != nil {
		return nil, err
	}

	if body == nil {
		body = http.NoBody
	}

	httpRequest, err := http.NewRequestWithContext(ctx, req.EffectiveMethod(), parsed.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	httpRequest.Header = ToHTTPHeader(req.Header)

	if host := req.Header.Get(HeaderHost); host != "" {
		httpRequest.Host = host
	}

	return httpRequest, nil
}

// FromHTTPRequest converts a net/http request back into a canonical one.
// The body is not consumed.
func FromHTTPRequest(httpRequest *http.Request) Request {
	return Request{
		Method: Method(httpRequest.Method),
		URL:    httpRequest.URL.String(),
		Header: FromHTTPHeader(httpRequest.Header),
	}
}

// FromHTTPResponse converts a net/http response and its already read body.
func FromHTTPResponse(httpResponse *http.Response, body []byte) *Response {
	return &Response{
		StatusCode: httpResponse.StatusCode,
		Header:     FromHTTPHeader(httpResponse.Header),
		Body:       body,
	}
}
