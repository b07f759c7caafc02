package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// Request describes one call against the API, relative to the client's base URL.
type Request struct {
	// Operation names the call for logs, metrics, and spans (e.g. "oidc.getClient").
	Operation string
	Method    string
	// Path is already escaped; use PathOf to build it from raw segments.
	Path  string
	Query url.Values
	// JSON, when non-nil, is encoded as the request body.
	JSON any
	// File, when non-nil, is sent as a multipart/form-data body.
	File *File
}

// File is a single multipart upload.
type File struct {
	// Field defaults to "file".
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// PathOf joins raw segments into an escaped absolute path.
//
//	PathOf("oidc", "clients", "a/b") // "/oidc/clients/a%2Fb"
func PathOf(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// body encodes the request payload and returns it with its content type.
func (r *Request) body() (io.Reader, string, error) {
	switch {
	case r.File != nil:
		return r.File.multipart()
	case r.JSON != nil:
		payload, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(payload), "application/json", nil
	default:
		return nil, "", nil
	}
}

// multipart encodes f as the only part of a form. A nil Content sends an
// empty part; the server judges the upload.
func (f *File) multipart() (io.Reader, string, error) {
	field := f.Field
	if field == "" {
		field = "file"
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if f.Content != nil {
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("write multipart content: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Response is a successful (2xx) reply with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
