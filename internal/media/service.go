package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode"

	"google.golang.org/api/googleapi"

	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/metrics"
	"github.com/angelmondragon/gearshare-backend/pkg/storage/gcs"
)

// DefaultMaxUploadBytes is the largest image accepted.
const DefaultMaxUploadBytes int64 = 1_000_000

type objectStore interface {
	Upload(ctx context.Context, obj gcs.Object) (string, error)
}

// Asset is an image received from a client.
type Asset struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Relay validates images and forwards them to object storage.
type Relay interface {
	Accept(ctx context.Context, asset Asset) (string, error)
}

type RelayParams struct {
	Store    objectStore
	MaxBytes int64
	Metrics  *metrics.UploadMetrics
	Logger   *logger.Logger
	Clock    func() time.Time
}

type relay struct {
	store    objectStore
	maxBytes int64
	metrics  *metrics.UploadMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewRelay(params RelayParams) (Relay, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	maxBytes := params.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &relay{
		store:    params.Store,
		maxBytes: maxBytes,
		metrics:  params.Metrics,
		logg:     logg,
		now:      now,
	}, nil
}

// Accept checks size and type locally, then uploads and returns the public URL.
func (r *relay) Accept(ctx context.Context, asset Asset) (string, error) {
	contentType, err := r.validate(asset)
	if err != nil {
		r.metrics.Observe(metrics.UploadResultRejected, len(asset.Data))
		return "", err
	}

	key := BuildObjectKey(r.now(), asset.FileName)
	ctx = r.logg.WithFields(ctx, map[string]any{
		"object_key":   key,
		"content_type": contentType,
		"size_bytes":   len(asset.Data),
	})

	url, err := r.store.Upload(ctx, gcs.Object{
		Key:         key,
		ContentType: contentType,
		Body:        asset.Data,
	})
	if err != nil {
		r.metrics.Observe(metrics.UploadResultFailed, len(asset.Data))
		mapped := mapUploadError(err)
		r.logg.Error(ctx, "media.upload_failed", mapped)
		return "", mapped
	}

	r.metrics.Observe(metrics.UploadResultSuccess, len(asset.Data))
	r.logg.Info(ctx, "media.uploaded")
	return url, nil
}

func (r *relay) validate(asset Asset) (string, error) {
	if len(asset.Data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file is empty").
			WithDetails(map[string]string{"file": "image file is empty"})
	}
	if int64(len(asset.Data)) > r.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodePayloadTooLarge, fmt.Sprintf("image must be at most %d bytes", r.maxBytes))
	}

	if !isAllowedExtension(extensionOf(asset.FileName)) {
		return "", pkgerrors.New(pkgerrors.CodeUnsupportedMedia, "only "+allowedDescription+" images are allowed")
	}
	contentType, err := resolveMimeType(asset.ContentType, asset.Data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnsupportedMedia, err, "only "+allowedDescription+" images are allowed")
	}
	if !isAllowedMime(contentType) {
		return "", pkgerrors.New(pkgerrors.CodeUnsupportedMedia, "only "+allowedDescription+" images are allowed")
	}
	return contentType, nil
}

func mapUploadError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = http.StatusText(apiErr.Code)
		}
		if msg == "" {
			msg = "upload failed"
		}
		return pkgerrors.Wrap(pkgerrors.CodeUploadFailed, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "object storage unavailable")
}

// BuildObjectKey prefixes the sanitized file name with the upload time in unix milliseconds.
func BuildObjectKey(at time.Time, fileName string) string {
	clean := sanitizeFileName(fileName)
	if clean == "" {
		clean = "upload"
	}
	return fmt.Sprintf("%d-%s", at.UnixMilli(), clean)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_'):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "-_.")
}
