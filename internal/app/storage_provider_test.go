package app

import (
	"errors"
	"testing"

	"github.com/yungbote/materials-catalog/internal/platform/gcp"
	"github.com/yungbote/materials-catalog/internal/platform/gcp/gcptest"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		src  error
		want StorageProviderBootstrapErrorCode
	}{
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingBucket}, StorageProviderBootstrapErrorMissingBucket},
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.src)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
		}
		if got.Code != tc.want {
			t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
		}
		if !errors.Is(err, tc.src) {
			t.Fatalf("cause not preserved for %q", tc.want)
		}
	}
}

func stubBucketFactory(t *testing.T) *gcp.ObjectStorageConfig {
	t.Helper()
	orig := newBucketServiceWithConfig
	t.Cleanup(func() { newBucketServiceWithConfig = orig })
	captured := &gcp.ObjectStorageConfig{}
	newBucketServiceWithConfig = func(_ *logger.Logger, cfg gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		*captured = cfg
		return gcptest.NewFakeBucket(), nil
	}
	return captured
}

func TestResolveBucketServiceInvalidMode(t *testing.T) {
	_, err := resolveBucketService(logger.NewNop(), Config{Storage: StorageConfig{Mode: "invalid"}})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q (%v)", StorageProviderBootstrapErrorInvalidMode, got, err)
	}
}

func TestResolveBucketServiceGCSMode(t *testing.T) {
	captured := stubBucketFactory(t)
	_, err := resolveBucketService(logger.NewNop(), Config{Storage: StorageConfig{
		Mode:           "GCS",
		MaterialBucket: "materials",
	}})
	if err != nil {
		t.Fatalf("resolveBucketService: %v", err)
	}
	if captured.Mode != gcp.ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", gcp.ObjectStorageModeGCS, captured.Mode)
	}
	if captured.ThumbnailBucket != "materials" {
		t.Fatalf("thumbnail bucket should default to the material bucket, got %q", captured.ThumbnailBucket)
	}
}

func TestResolveBucketServiceInfersEmulatorMode(t *testing.T) {
	captured := stubBucketFactory(t)
	_, err := resolveBucketService(logger.NewNop(), Config{Storage: StorageConfig{
		EmulatorHost:   "http://fake-gcs:4443",
		MaterialBucket: "materials",
	}})
	if err != nil {
		t.Fatalf("resolveBucketService: %v", err)
	}
	if captured.Mode != gcp.ObjectStorageModeGCSEmulator || !captured.CompatibilityFallback {
		t.Fatalf("expected inferred emulator mode, got %+v", *captured)
	}
}

func TestResolveBucketServiceConfigErrors(t *testing.T) {
	cases := []struct {
		cfg  StorageConfig
		want StorageProviderBootstrapErrorCode
	}{
		{StorageConfig{Mode: "gcs"}, StorageProviderBootstrapErrorMissingBucket},
		{StorageConfig{Mode: "gcs_emulator", MaterialBucket: "m"}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{StorageConfig{Mode: "gcs_emulator", MaterialBucket: "m", EmulatorHost: "not-a-url"}, StorageProviderBootstrapErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		_, err := resolveBucketService(logger.NewNop(), Config{Storage: tc.cfg})
		if got := storageProviderBootstrapErrorCode(err); err == nil || got != tc.want {
			t.Fatalf("%+v: want=%q got=%q (%v)", tc.cfg, tc.want, got, err)
		}
	}
}
