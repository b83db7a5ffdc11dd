package model

import "fmt"

// MultipartFieldKind tells the variants of MultipartField apart.
type MultipartFieldKind uint8

const (
	// MultipartString is an inline text field.
	MultipartString MultipartFieldKind = iota + 1
	// MultipartFile is a file attachment read from disk or memory.
	MultipartFile
)

// MultipartField is one named part of a multipart/form-data body.
// Build it with StringField, FileField or BytesField.
type MultipartField struct {
	Kind  MultipartFieldKind
	Name  string
	Value string
	// Path is the file to read; empty when Data is used.
	Path string
	// Data is the in-memory file content; nil when Path is used.
	Data     []byte
	FileName string
	MIMEType string
}

// StringField builds an inline text field.
func StringField(name, value string) MultipartField {
	return MultipartField{Kind: MultipartString, Name: name, Value: value}
}

// FileField builds a file field read from path when the body is encoded.
func FileField(name, path string) MultipartField {
	return MultipartField{Kind: MultipartFile, Name: name, Path: path}
}

// BytesField builds a file field with in-memory content.
func BytesField(name string, data []byte) MultipartField {
	return MultipartField{Kind: MultipartFile, Name: name, Data: data}
}

// WithFileName returns a copy with an explicit file name.
func (f MultipartField) WithFileName(fileName string) MultipartField {
	f.FileName = fileName

	return f
}

// WithMIMEType returns a copy with an explicit MIME type.
func (f MultipartField) WithMIMEType(mimeType string) MultipartField {
	f.MIMEType = mimeType

	return f
}

// IsFile reports whether the field is a file attachment.
func (f MultipartField) IsFile() bool {
	return f.Kind == MultipartFile
}

// HasExplicitMetadata reports whether both the file name and MIME type were given.
func (f MultipartField) HasExplicitMetadata() bool {
	return f.FileName != "" && f.MIMEType != ""
}

// String renders the field without its content, for logs.
func (f MultipartField) String() string {
	if !f.IsFile() {
		return fmt.Sprintf("string(%s)", f.Name)
	}

	source := f.Path
	if source == "" {
		source = fmt.Sprintf("%d bytes", len(f.Data))
	}

	return fmt.Sprintf("file(%s, %s, %q, %q)", f.Name, source, f.FileName, f.MIMEType)
}

// Validate checks that the field can be encoded.
func (f MultipartField) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: multipart field without a name", ErrInvalidRequest)
	}

	switch f.Kind {
	case MultipartString:
		return nil
	case MultipartFile:
		if f.Path == "" && f.Data == nil {
			return fmt.Errorf("%w: file field %q has neither a path nor data", ErrInvalidRequest, f.Name)
		}

		return nil
	default:
		return fmt.Errorf("%w: multipart field %q has unknown kind %d", ErrInvalidRequest, f.Name, f.Kind)
	}
}
