package model

import (
	"net/http"
	"net/textproto"
	"slices"
	"strings"
)

const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"
	// HeaderUserAgent is the User-Agent header name.
	HeaderUserAgent = "User-Agent"
	// HeaderCookie is the Cookie header name.
	HeaderCookie = "Cookie"
	// HeaderHost is the Host header name.
	HeaderHost = "Host"
	// HeaderAccept is the Accept header name.
	HeaderAccept = "Accept"

	cookieSeparator  = "; "
	defaultSeparator = ", "
)

// Field is a single header line.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered, multi-valued header set. Names are compared case-insensitively
// and keep the spelling they were added with. Values are kept as raw bytes.
//
// The zero value is an empty header set ready to use.
type Header struct {
	fields []Field
}

// NewHeader builds a header set from name/value pairs.
// An odd trailing name is ignored.
func NewHeader(pairs ...string) Header {
	var h Header

	for i := 0; i+1 < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}

	return h
}

// Add appends a value for the name, keeping any existing values.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Set replaces every value of the name with a single one, keeping the position
// of the first existing occurrence.
func (h *Header) Set(name, value string) {
	index := h.index(name)
	if index < 0 {
		h.Add(name, value)

		return
	}

	h.fields[index].Value = value

	kept := h.fields[:index+1]
	for _, f := range h.fields[index+1:] {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}

	h.fields = kept
}

// Del removes every value of the name.
func (h *Header) Del(name string) {
	h.fields = slices.DeleteFunc(h.fields, func(f Field) bool {
		return strings.EqualFold(f.Name, name)
	})
}

// Get returns the first value of the name, or "".
func (h Header) Get(name string) string {
	if index := h.index(name); index >= 0 {
		return h.fields[index].Value
	}

	return ""
}

// Values returns every value of the name in insertion order.
func (h Header) Values(name string) []string {
	var values []string

	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}

	return values
}

// Has reports whether the name is present. An empty value still counts:
// the caller set it on purpose and defaults must not replace it.
func (h Header) Has(name string) bool {
	return h.index(name) >= 0
}

// Len returns the number of header lines.
func (h Header) Len() int {
	return len(h.fields)
}

// Fields returns a copy of the header lines in insertion order.
func (h Header) Fields() []Field {
	return slices.Clone(h.fields)
}

// Clone returns an independent copy of the header set.
func (h Header) Clone() Header {
	return Header{fields: slices.Clone(h.fields)}
}

// Fold combines repeated names into one line each, in first-seen order and with the
// first-seen spelling. Cookie values are joined with "; ", every other name with ", ".
func (h Header) Fold() []Field {
	folded := make([]Field, 0, len(h.fields))
	positions := make(map[string]int, len(h.fields))

	for _, f := range h.fields {
		key := strings.ToLower(f.Name)

		position, ok := positions[key]
		if !ok {
			positions[key] = len(folded)
			folded = append(folded, f)

			continue
		}

		folded[position].Value += separatorFor(f.Name) + f.Value
	}

	return folded
}

// Latin1View returns the folded header lines with every value transcoded by EncodeLatin1,
// which is safe to hand to Unicode-only consumers such as log encoders.
func (h Header) Latin1View() []Field {
	folded := h.Fold()
	for i := range folded {
		folded[i].Value = EncodeLatin1(folded[i].Value)
	}

	return folded
}

// HeaderFromLatin1View rebuilds a header set from lines produced by Latin1View.
func HeaderFromLatin1View(fields []Field) (Header, error) {
	var h Header

	for _, f := range fields {
		value, err := DecodeLatin1(f.Value)
		if err != nil {
			return Header{}, err
		}

		h.Add(f.Name, value)
	}

	return h, nil
}

// ToHTTPHeader converts the header set into the net/http representation.
// Repeated names are folded, so each key holds exactly one value.
func ToHTTPHeader(h Header) http.Header {
	folded := h.Fold()
	result := make(http.Header, len(folded))

	for _, f := range folded {
		result[textproto.CanonicalMIMEHeaderKey(f.Name)] = []string{f.Value}
	}

	return result
}

// FromHTTPHeader converts a net/http header map into a header set.
// Map iteration order is undefined, so names are sorted to keep the result stable;
// the order of values under one name is preserved.
func FromHTTPHeader(header http.Header) Header {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}

	slices.Sort(names)

	var h Header

	for _, name := range names {
		for _, value := range header[name] {
			h.Add(name, value)
		}
	}

	return h
}

func (h Header) index(name string) int {
	return slices.IndexFunc(h.fields, func(f Field) bool {
		return strings.EqualFold(f.Name, name)
	})
}

func separatorFor(name string) string {
	if strings.EqualFold(name, HeaderCookie) {
		return cookieSeparator
	}

	return defaultSeparator
}
