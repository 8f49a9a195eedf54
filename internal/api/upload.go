package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/idilsaglam/mytodo/internal/apperr"
)

// Upload posts an image as multipart field "file" and returns its URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	const op = "upload image"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	ctype := mime.TypeByExtension(filepath.Ext(filename))
	if ctype == "" {
		ctype = "image/jpeg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("%s: read %s: %w", op, filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var out struct {
		URL string `json:"url"`
	}
	err = c.do(ctx, call{
		op: op, method: http.MethodPost, path: "/api/upload", auth: true,
		body: &buf, contentType: mw.FormDataContentType(), fallback: "Error uploading image",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", apperr.NewServer(op, http.StatusOK, "", "Error uploading image")
	}
	return out.URL, nil
}
