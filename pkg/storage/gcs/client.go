package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"github.com/angelmondragon/gearshare-backend/pkg/config"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
)

const (
	scope          = "https://www.googleapis.com/auth/devstorage.read_write"
	DefaultBaseURL = "https://storage.googleapis.com"
	pingTimeout    = 5 * time.Second
	requestTimeout = 30 * time.Second
)

// Client talks to the Cloud Storage JSON API for a single bucket.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	bucket       string
	cacheControl string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Object describes a single upload.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

// NewClient resolves Google credentials, builds an authorized HTTP client and verifies bucket access.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	creds, err := resolveCredentials(ctx, gcp)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, creds.TokenSource)
	httpClient.Timeout = requestTimeout

	client := NewWithHTTPClient(httpClient, cfg, DefaultBaseURL)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

// NewWithHTTPClient builds a client over an already authorized HTTP client.
func NewWithHTTPClient(httpClient *http.Client, cfg config.GCSConfig, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		bucket:       cfg.BucketName,
		cacheControl: cfg.CacheControl,
	}
}

func resolveCredentials(ctx context.Context, gcp config.GCPConfig) (*google.Credentials, error) {
	switch {
	case gcp.CredentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(gcp.CredentialsJSON), scope)
		if err != nil {
			return nil, fmt.Errorf("parsing gcp credentials json: %w", err)
		}
		return creds, nil
	case gcp.ApplicationCredentials != "":
		data, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, scope)
		if err != nil {
			return nil, fmt.Errorf("parsing credentials file: %w", err)
		}
		return creds, nil
	default:
		creds, err := google.FindDefaultCredentials(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("finding default gcp credentials: %w", err)
		}
		return creds, nil
	}
}

func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// PublicURL returns the anonymous-read URL of an object in the bucket.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", DefaultBaseURL, c.bucket, escapeObjectPath(key))
}

// Upload stores the object without overwriting an existing generation and returns its public URL.
// Non-2xx responses come back as *googleapi.Error.
func (c *Client) Upload(ctx context.Context, obj Object) (string, error) {
	if c == nil || c.httpClient == nil {
		return "", errors.New("gcs client not initialized")
	}
	if strings.TrimSpace(obj.Key) == "" {
		return "", errors.New("object key is required")
	}

	body, contentType, err := c.multipartBody(obj)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("uploadType", "multipart")
	q.Set("ifGenerationMatch", "0")
	endpoint := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", c.baseURL, url.PathEscape(c.bucket), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gcs upload request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return "", err
	}

	var created struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("decoding gcs upload response: %w", err)
	}
	name := created.Name
	if name == "" {
		name = obj.Key
	}
	return c.PublicURL(name), nil
}

func (c *Client) multipartBody(obj Object) (io.Reader, string, error) {
	meta := map[string]string{
		"name":        obj.Key,
		"contentType": obj.ContentType,
	}
	if c.cacheControl != "" {
		meta["cacheControl"] = c.cacheControl
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	part, err := mw.CreatePart(metaHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(metaJSON); err != nil {
		return nil, "", err
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", obj.ContentType)
	part, err = mw.CreatePart(mediaHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(obj.Body); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf, "multipart/related; boundary=" + mw.Boundary(), nil
}

// Ping lists at most one object, which requires storage.objects.list on the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("gcs client not initialized")
	}
	if c.bucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.baseURL, url.PathEscape(c.bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return fmt.Errorf("gcs object check failed: %w", err)
	}
	return nil
}

func escapeObjectPath(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
