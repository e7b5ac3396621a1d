package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

var allowedExtensions = map[string]struct{}{
	"jpeg": {},
	"jpg":  {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

const allowedDescription = "jpeg, jpg, png, gif or webp"

func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
}

func isAllowedExtension(ext string) bool {
	_, ok := allowedExtensions[ext]
	return ok
}

func isAllowedMime(mediaType string) bool {
	_, ok := allowedMimeTypes[mediaType]
	return ok
}

// resolveMimeType normalizes the declared type and falls back to sniffing the
// bytes when the client sent nothing useful.
func resolveMimeType(declared string, data []byte) (string, error) {
	clean := strings.TrimSpace(declared)
	if clean != "" {
		mediaType, _, err := mime.ParseMediaType(clean)
		if err != nil {
			return "", fmt.Errorf("mime type invalid: %w", err)
		}
		mediaType = strings.ToLower(mediaType)
		if mediaType != octetStream {
			return mediaType, nil
		}
	}
	detected := mimetype.Detect(data)
	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return "", fmt.Errorf("sniffed mime type invalid: %w", err)
	}
	return strings.ToLower(mediaType), nil
}
