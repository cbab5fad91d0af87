// Package gcptest provides an in-memory BucketService for tests.
package gcptest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/yungbote/materials-catalog/internal/platform/gcp"
)

// FakeBucket stores objects in memory. FailUpload/FailDelete inject errors for
// every call while set; FailUploadAfter lets the first N uploads succeed.
type FakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte

	FailUpload      error
	FailUploadAfter int
	FailDelete      error

	Uploads int
	Deletes []string
}

var _ gcp.BucketService = (*FakeBucket)(nil)

func NewFakeBucket() *FakeBucket {
	return &FakeBucket{objects: map[string][]byte{}}
}

func objectID(category gcp.BucketCategory, key string) string {
	return string(category) + "|" + key
}

func (f *FakeBucket) UploadFile(_ context.Context, category gcp.BucketCategory, key string, file io.Reader, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads++
	if f.FailUpload != nil && f.Uploads > f.FailUploadAfter {
		return &gcp.StorageError{Op: "upload", Category: category, Key: key, Err: f.FailUpload}
	}
	raw, err := io.ReadAll(file)
	if err != nil {
		return &gcp.StorageError{Op: "upload", Category: category, Key: key, Err: err}
	}
	f.objects[objectID(category, key)] = raw
	return nil
}

func (f *FakeBucket) DeleteFile(_ context.Context, category gcp.BucketCategory, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deletes = append(f.Deletes, key)
	if f.FailDelete != nil {
		return &gcp.StorageError{Op: "delete", Category: category, Key: key, Err: f.FailDelete}
	}
	id := objectID(category, key)
	if _, ok := f.objects[id]; !ok {
		return &gcp.StorageError{Op: "delete", Category: category, Key: key, Err: gcp.ErrObjectNotFound}
	}
	delete(f.objects, id)
	return nil
}

func (f *FakeBucket) DownloadFile(_ context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.objects[objectID(category, key)]
	if !ok {
		return nil, &gcp.StorageError{Op: "download", Category: category, Key: key, Err: gcp.ErrObjectNotFound}
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *FakeBucket) Exists(_ context.Context, category gcp.BucketCategory, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectID(category, key)]
	return ok, nil
}

func (f *FakeBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return fmt.Sprintf("memory://%s/%s", category, key)
}

// Put seeds an object directly.
func (f *FakeBucket) Put(category gcp.BucketCategory, key string, raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectID(category, key)] = raw
}

// Keys lists stored keys for a category, sorted.
func (f *FakeBucket) Keys(category gcp.BucketCategory) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := string(category) + "|"
	out := []string{}
	for id := range f.objects {
		if len(id) > len(prefix) && id[:len(prefix)] == prefix {
			out = append(out, id[len(prefix):])
		}
	}
	sort.Strings(out)
	return out
}

// Len is the total number of stored objects.
func (f *FakeBucket) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
