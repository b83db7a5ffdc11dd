// Package model holds the backend-independent representation of outbound HTTP requests
// and inbound responses: methods, ordered multi-valued header sets, bodies and multipart
// fields. It also owns the conversions to and from net/http types, the ISO-8859-1 header
// value transcoding and the error taxonomy shared by every transport backend.
package model
