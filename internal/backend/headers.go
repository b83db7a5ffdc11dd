package backend

import (
	"github.com/oshokin/aigc-client/internal/model"
	transporthttp "github.com/oshokin/aigc-client/internal/transport/http"
)

// ApplyDefaultHeaders returns a copy of h with Content-Type and User-Agent filled in
// when they are absent. Values the caller set are kept, so applying it twice changes nothing.
func ApplyDefaultHeaders(h model.Header, userAgent string) model.Header {
	h = ApplyUserAgent(h, userAgent)

	if !h.Has(model.HeaderContentType) {
		h.Set(model.HeaderContentType, transporthttp.DefaultContentType)
	}

	return h
}

// ApplyUserAgent returns a copy of h with User-Agent filled in when it is absent.
// Multipart uploads use it alone because their Content-Type carries the boundary.
func ApplyUserAgent(h model.Header, userAgent string) model.Header {
	h = h.Clone()

	if userAgent != "" && !h.Has(model.HeaderUserAgent) {
		h.Set(model.HeaderUserAgent, userAgent)
	}

	return h
}
