package backend

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"

	"github.com/oshokin/aigc-client/internal/model"
)

// Static error definitions for better error handling.
var (
	// ErrUnreadableFile indicates a multipart file field whose file cannot be opened.
	ErrUnreadableFile = errors.New("multipart file is not readable")
)

// Operation names used in errors and logs.
const (
	OpPlainRequest    = "plain request"
	OpUploadBytes     = "upload bytes"
	OpUploadMultipart = "upload multipart"
	OpStreamEvents    = "stream events"
)

// ClassifyError maps a failed call to the error taxonomy.
// Errors that already carry a kind are returned unchanged; everything else is a network-level
// failure and becomes a transport error keeping err as its cause.
func ClassifyError(op string, req model.Request, err error) error {
	if err == nil {
		return nil
	}

	var (
		modelErr  *model.Error
		statusErr *model.HTTPStatusError
	)

	if errors.As(err, &modelErr) || errors.As(err, &statusErr) {
		return err
	}

	if errors.Is(err, model.ErrInvalidRequest) {
		return model.NewInvalidRequestError(op, req, err)
	}

	return model.NewTransportError(op, req, err)
}

// FailureReason names the kind of network failure behind err, for logs and metrics.
func FailureReason(err error) string {
	var (
		netErr       net.Error
		dnsErr       *net.DNSError
		opErr        *net.OpError
		certErr      *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		authorityErr x509.UnknownAuthorityError
		hostErr      x509.HostnameError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrShutdown):
		return "shutdown"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &dnsErr):
		return "dns"
	case errors.As(err, &certErr), errors.As(err, &recordErr), errors.As(err, &alertErr),
		errors.As(err, &authorityErr), errors.As(err, &hostErr):
		return "tls"
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return "connect"
	default:
		return "network"
	}
}
