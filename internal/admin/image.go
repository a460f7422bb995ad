package admin

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps the raw image. Base64 grows it by a third, so 6 MiB
// would encode to exactly the server's 8 MiB body limit; the 64 KiB margin
// leaves room for the data URI prefix and the other draft fields.
const MaxImageBytes = 6<<20 - 64<<10

var (
	ErrNotImage      = errors.New("file is not an image")
	ErrImageTooLarge = errors.New("image is too large")
)

// AttachImage reads a local file into the draft as a data URI.
func (d *Dashboard) AttachImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	uri, err := EncodeImage(filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("attach %s: %w", path, err)
	}
	d.Draft.Image = uri
	return nil
}

// EncodeImage returns data:<mime>;base64,<payload>. The type is sniffed from the
// content, falling back to the file extension.
func EncodeImage(name string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > MaxImageBytes {
		return "", ErrImageTooLarge
	}

	mimeType := http.DetectContentType(raw)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", ErrNotImage
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
