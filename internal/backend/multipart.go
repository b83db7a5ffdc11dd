package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/oshokin/aigc-client/internal/model"
)

// MultipartBody is a multipart/form-data body encoded lazily, part by part, in field order.
// File fields are read from disk only while the body is being sent.
type MultipartBody struct {
	// ContentType carries the boundary and must be sent as the Content-Type header.
	ContentType string
	// Size is the exact encoded length in bytes.
	Size int64

	boundary string
	parts    []multipartPart
}

type multipartPart struct {
	field    model.MultipartField
	fileName string
	mimeType string
	size     int64
}

// quoteEscaper follows mime/multipart, which does not export it.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"") //nolint:gochecknoglobals // Immutable replacer.

// EncodeMultipart validates fields, resolves file metadata and computes the encoded size.
// A file field with both a file name and a MIME type keeps them. Otherwise the file name
// defaults to the base name of the path (or the field name for in-memory data) and the MIME
// type is detected from the content.
func EncodeMultipart(fields []model.MultipartField) (*MultipartBody, error) {
	body := &MultipartBody{
		boundary: multipart.NewWriter(io.Discard).Boundary(),
		parts:    make([]multipartPart, 0, len(fields)),
	}

	for _, field := range fields {
		part, err := resolvePart(field)
		if err != nil {
			return nil, err
		}

		body.parts = append(body.parts, part)
	}

	size, contentType, err := body.measure()
	if err != nil {
		return nil, err
	}

	body.Size = size
	body.ContentType = contentType

	return body, nil
}

// Open starts encoding into a pipe and returns its reading end.
// Closing the reader stops the encoder.
func (b *MultipartBody) Open(ctx context.Context) io.ReadCloser {
	reader, writer := io.Pipe()

	go func() {
		writer.CloseWithError(b.write(ctx, writer))
	}()

	return reader
}

// Bytes encodes the whole body into memory.
func (b *MultipartBody) Bytes(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer

	buf.Grow(int(b.Size))

	if err := b.write(ctx, &buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Fields returns a log-friendly description of the parts.
func (b *MultipartBody) Fields() []string {
	result := make([]string, 0, len(b.parts))

	for _, part := range b.parts {
		if !part.field.IsFile() {
			result = append(result, part.field.String())

			continue
		}

		result = append(result, fmt.Sprintf("file(%s, %q, %q, %d bytes)",
			part.field.Name, part.fileName, part.mimeType, part.size))
	}

	return result
}

func (b *MultipartBody) write(ctx context.Context, w io.Writer) error {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(b.boundary); err != nil {
		return err
	}

	for _, part := range b.parts {
		if err := ctx.Err(); err != nil {
			return err
		}

		partWriter, err := mw.CreatePart(part.header())
		if err != nil {
			return err
		}

		if err = part.writeContent(partWriter); err != nil {
			return err
		}
	}

	return mw.Close()
}

// measure writes the headers and boundaries to a counter and adds the content sizes.
func (b *MultipartBody) measure() (int64, string, error) {
	counter := &countingWriter{}

	mw := multipart.NewWriter(counter)
	if err := mw.SetBoundary(b.boundary); err != nil {
		return 0, "", err
	}

	for _, part := range b.parts {
		if _, err := mw.CreatePart(part.header()); err != nil {
			return 0, "", err
		}

		counter.n += part.size
	}

	if err := mw.Close(); err != nil {
		return 0, "", err
	}

	return counter.n, mw.FormDataContentType(), nil
}

func resolvePart(field model.MultipartField) (multipartPart, error) {
	if err := field.Validate(); err != nil {
		return multipartPart{}, err
	}

	if !field.IsFile() {
		return multipartPart{field: field, size: int64(len(field.Value))}, nil
	}

	part := multipartPart{
		field:    field,
		fileName: field.FileName,
		mimeType: field.MIMEType,
		size:     int64(len(field.Data)),
	}

	if field.Path != "" {
		info, err := os.Stat(field.Path)
		if err != nil {
			return multipartPart{}, fmt.Errorf("%w: %w: %w", model.ErrInvalidRequest, ErrUnreadableFile, err)
		}

		if info.IsDir() {
			return multipartPart{}, fmt.Errorf("%w: %w: %s is a directory",
				model.ErrInvalidRequest, ErrUnreadableFile, field.Path)
		}

		part.size = info.Size()
	}

	if field.HasExplicitMetadata() {
		return part, nil
	}

	if part.fileName == "" {
		part.fileName = field.Name

		if field.Path != "" {
			part.fileName = filepath.Base(field.Path)
		}
	}

	if part.mimeType == "" {
		mimeType, err := detectMIMEType(field)
		if err != nil {
			return multipartPart{}, fmt.Errorf("%w: %w: %w", model.ErrInvalidRequest, ErrUnreadableFile, err)
		}

		part.mimeType = mimeType
	}

	return part, nil
}

func detectMIMEType(field model.MultipartField) (string, error) {
	if field.Path == "" {
		return mimetype.Detect(field.Data).String(), nil
	}

	detected, err := mimetype.DetectFile(field.Path)
	if err != nil {
		return "", err
	}

	return detected.String(), nil
}

func (p multipartPart) header() textproto.MIMEHeader {
	header := make(textproto.MIMEHeader)

	if !p.field.IsFile() {
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(p.field.Name)))

		return header
	}

	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(p.field.Name), quoteEscaper.Replace(p.fileName)))
	header.Set("Content-Type", p.mimeType)

	return header
}

func (p multipartPart) writeContent(w io.Writer) error {
	switch {
	case !p.field.IsFile():
		_, err := io.WriteString(w, p.field.Value)

		return err
	case p.field.Path == "":
		_, err := w.Write(p.field.Data)

		return err
	}

	file, err := os.Open(p.field.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}

	defer file.Close() //nolint:errcheck // Read-only file.

	// The size was announced up front, so a file that changed meanwhile must not be sent.
	written, err := io.Copy(w, io.LimitReader(file, p.size))
	if err != nil {
		return err
	}

	if written != p.size {
		return fmt.Errorf("%w: %s shrank from %d to %d bytes", ErrUnreadableFile, p.field.Path, p.size, written)
	}

	return nil
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))

	return len(p), nil
}
