package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryMaterialFile BucketCategory = "material_file"
	BucketCategoryThumbnail    BucketCategory = "thumbnail"
)

// BucketService is the asset store for material files and thumbnails.
type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader, contentType string) error
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, category BucketCategory, key string) (bool, error)
	GetPublicURL(category BucketCategory, key string) string
}

// StorageError reports a failed asset operation.
type StorageError struct {
	Op       string
	Category BucketCategory
	Key      string
	Err      error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "storage error"
	}
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Category, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, ErrObjectNotFound) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not found") || strings.Contains(s, "does not exist")
}

// ErrObjectNotFound is returned by non-GCS implementations for missing keys.
var ErrObjectNotFound = errors.New("object not found")

// NewObjectKey builds a collision-free key for an uploaded asset.
func NewObjectKey(category BucketCategory, filename string) string {
	prefix := "materials"
	if category == BucketCategoryThumbnail {
		prefix = "thumbnails"
	}
	return fmt.Sprintf("%s/%s/%s", prefix, uuid.New().String(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "asset"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 128 {
		out = out[len(out)-128:]
	}
	return out
}

type bucketService struct {
	log             *logger.Logger
	storageClient   *storage.Client
	storageMode     ObjectStorageMode
	materialBucket  string
	thumbnailBucket string
	publicBaseURL   string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	storageCfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewBucketServiceWithConfig(log, storageCfg)
}

func NewBucketServiceWithConfig(log *logger.Logger, storageCfg ObjectStorageConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")

	publicBaseURL, publicBaseSource, err := resolveObjectStoragePublicBaseURL(storageCfg)
	if err != nil {
		return nil, err
	}

	stClient, err := newStorageClientForMode(context.Background(), storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	thumbnailBucket := strings.TrimSpace(storageCfg.ThumbnailBucket)
	if thumbnailBucket == "" {
		thumbnailBucket = storageCfg.MaterialBucket
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"public_base_source", publicBaseSource,
		"material_bucket", storageCfg.MaterialBucket,
		"thumbnail_bucket", thumbnailBucket,
	)

	return &bucketService{
		log:             serviceLog,
		storageClient:   stClient,
		storageMode:     storageCfg.Mode,
		materialBucket:  storageCfg.MaterialBucket,
		thumbnailBucket: thumbnailBucket,
		publicBaseURL:   publicBaseURL,
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client routes every call to STORAGE_EMULATOR_HOST when it is set.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(storageCfg.Mode),
		}
	}
}

func resolveObjectStoragePublicBaseURL(storageCfg ObjectStorageConfig) (baseURL string, source string, err error) {
	raw := strings.TrimSpace(storageCfg.PublicBaseURL)
	if raw != "" {
		parsed, parseErr := url.Parse(raw)
		if parseErr != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return "", "", fmt.Errorf(
				"invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443",
				raw,
			)
		}
		return strings.TrimRight(raw, "/"), "object_storage_public_base_url", nil
	}
	if storageCfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"), "storage_emulator_host", nil
	}
	return "", "gcs_default", nil
}

func (bs *bucketService) bucketFor(category BucketCategory) (string, error) {
	switch category {
	case BucketCategoryMaterialFile:
		return bs.materialBucket, nil
	case BucketCategoryThumbnail:
		return bs.thumbnailBucket, nil
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader, contentType string) error {
	bucket, err := bs.bucketFor(category)
	if err != nil {
		return &StorageError{Op: "upload", Category: category, Key: key, Err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if w.ContentType == "" {
		w.ContentType = ContentTypeForKey(key)
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return &StorageError{Op: "upload", Category: category, Key: key, Err: err}
	}
	if err := w.Close(); err != nil {
		return &StorageError{Op: "upload", Category: category, Key: key, Err: err}
	}
	bs.log.Debug("Asset stored", "bucket", bucket, "key", key)
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category BucketCategory, key string) error {
	bucket, err := bs.bucketFor(category)
	if err != nil {
		return &StorageError{Op: "delete", Category: category, Key: key, Err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return &StorageError{Op: "delete", Category: category, Key: key, Err: err}
	}
	return nil
}

// readCloserWithCancel keeps the download context alive until the caller closes the body.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	bucket, err := bs.bucketFor(category)
	if err != nil {
		return nil, &StorageError{Op: "download", Category: category, Key: key, Err: err}
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := bs.storageClient.Bucket(bucket).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, &StorageError{Op: "download", Category: category, Key: key, Err: err}
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (bs *bucketService) Exists(ctx context.Context, category BucketCategory, key string) (bool, error) {
	bucket, err := bs.bucketFor(category)
	if err != nil {
		return false, &StorageError{Op: "stat", Category: category, Key: key, Err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, err = bs.storageClient.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "stat", Category: category, Key: key, Err: err}
	}
	return true, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	bucket, err := bs.bucketFor(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if bs.storageMode == ObjectStorageModeGCSEmulator && bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", bs.publicBaseURL, url.PathEscape(bucket), url.PathEscape(key))
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}

// ContentTypeForKey guesses a MIME type from the key extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".pptx"):
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case strings.HasSuffix(s, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(s, ".epub"):
		return "application/epub+zip"
	default:
		return "application/octet-stream"
	}
}
