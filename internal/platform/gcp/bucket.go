package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

// ErrObjectNotFound marks a read of an object that does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrObjectTooLarge marks a text object over maxTextBytes.
var ErrObjectTooLarge = errors.New("object too large")

// maxTextBytes caps a single tutorial chunk.
const maxTextBytes = 1 << 20

// ContentBucket is the blob store that holds tutorial text chunks.
type ContentBucket interface {
	ReadText(ctx context.Context, object string) (string, error)
	Upload(ctx context.Context, object string, r io.Reader) error
	Delete(ctx context.Context, object string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Name() string
}

type BucketConfig struct {
	Name        string
	Storage     ObjectStorageConfig
	Credentials string
}

type contentBucket struct {
	log          *logger.Logger
	client       *storage.Client
	httpClient   *http.Client
	name         string
	mode         ObjectStorageMode
	emulatorHost string
}

func NewContentBucket(log *logger.Logger, cfg BucketConfig) (ContentBucket, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("missing content bucket name (CONTENT_GCS_BUCKET_NAME)")
	}
	if err := ValidateObjectStorageConfig(cfg.Storage); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	serviceLog := log.With("service", "ContentBucket")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Storage.Mode,
		"mode_inferred", cfg.Storage.Inferred,
		"emulator_host", cfg.Storage.EmulatorHost,
		"bucket", cfg.Name,
	)
	return &contentBucket{
		log:          serviceLog,
		client:       client,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		name:         cfg.Name,
		mode:         cfg.Storage.Mode,
		emulatorHost: strings.TrimRight(cfg.Storage.EmulatorHost, "/"),
	}, nil
}

func newStorageClient(ctx context.Context, cfg BucketConfig) (*storage.Client, error) {
	switch cfg.Storage.Mode {
	case ObjectStorageModeGCS:
		opts := append(ClientOptions(cfg.Credentials), option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client only honours the emulator through this variable.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(cfg.Storage.EmulatorHost, "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: string(cfg.Storage.Mode)}
	}
}

func (b *contentBucket) Name() string { return b.name }

// ObjectPath joins a folder and a file name the way objects are laid out.
func ObjectPath(folder, file string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	file = strings.TrimLeft(strings.TrimSpace(file), "/")
	if folder == "" {
		return file
	}
	return path.Join(folder, file)
}

func (b *contentBucket) ReadText(ctx context.Context, object string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var body io.ReadCloser
	if b.mode == ObjectStorageModeGCSEmulator {
		rc, err := b.emulatorGet(ctx, object)
		if err != nil {
			return "", err
		}
		body = rc
	} else {
		r, err := b.client.Bucket(b.name).Object(object).NewReader(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, b.name, object)
		}
		if err != nil {
			return "", fmt.Errorf("open gs://%s/%s: %w", b.name, object, err)
		}
		body = r
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, maxTextBytes+1))
	if err != nil {
		return "", fmt.Errorf("read gs://%s/%s: %w", b.name, object, err)
	}
	if len(raw) > maxTextBytes {
		b.log.Warn("text object over size limit", "object", object, "limit_bytes", maxTextBytes)
		return "", fmt.Errorf("%w: gs://%s/%s exceeds %d bytes", ErrObjectTooLarge, b.name, object, maxTextBytes)
	}
	return string(raw), nil
}

func (b *contentBucket) emulatorGet(ctx context.Context, object string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", b.emulatorHost, url.PathEscape(b.name), url.PathEscape(object))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build emulator request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emulator download: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, b.name, object)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("emulator download failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

func (b *contentBucket) Upload(ctx context.Context, object string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.name).Object(object).NewWriter(ctx)
	w.ContentType = contentTypeFor(object)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", b.name, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer gs://%s/%s: %w", b.name, object, err)
	}
	return nil
}

func (b *contentBucket) Delete(ctx context.Context, object string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := b.client.Bucket(b.name).Object(object).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, b.name, object)
	}
	if err != nil {
		return fmt.Errorf("delete gs://%s/%s: %w", b.name, object, err)
	}
	return nil
}

func (b *contentBucket) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := b.client.Bucket(b.name).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", b.name, prefix, err)
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func contentTypeFor(object string) string {
	switch strings.ToLower(path.Ext(object)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}
