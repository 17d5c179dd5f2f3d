package processor

import (
	"context"
	"testing"
	"time"

	"github.com/ateneo-connect/upload-pipeline/internal/config"
	"github.com/ateneo-connect/upload-pipeline/internal/domain"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/objectstore"
)

// fakeStore is an in-memory object store recording every mutation.
type fakeStore struct {
	objects map[string][]byte

	getErr    error
	rangeErr  error
	putErr    error
	copyErr   error
	deleteErr error

	puts    []string
	copies  []string
	deletes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Head(ctx context.Context, bucket, key string) (objectstore.ObjectMeta, error) {
	return objectstore.ObjectMeta{Size: int64(len(s.objects[key]))}, nil
}

func (s *fakeStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.objects[key], nil
}

func (s *fakeStore) GetRange(ctx context.Context, bucket, key string, length int64) ([]byte, error) {
	if s.rangeErr != nil {
		return nil, s.rangeErr
	}
	data := s.objects[key]
	if int64(len(data)) > length {
		data = data[:length]
	}
	return data, nil
}

func (s *fakeStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = body
	s.puts = append(s.puts, key)
	return nil
}

func (s *fakeStore) Copy(ctx context.Context, bucket, srcKey, dstKey, contentType string, metadata map[string]string) error {
	if s.copyErr != nil {
		return s.copyErr
	}
	s.objects[dstKey] = s.objects[srcKey]
	s.copies = append(s.copies, dstKey)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, bucket, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *fakeStore) GetStorageType() string { return "fake" }

func processorPolicy() config.Policy {
	return config.Policy{
		MaxFileSize:      50 * 1024 * 1024,
		ImageTypes:       []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		VideoTypes:       []string{"video/mp4", "video/quicktime"},
		DocumentTypes:    []string{"application/pdf", "text/plain"},
		ImageQuality:     85,
		WebPThreshold:    1024 * 1024,
		ThumbnailWidth:   300,
		ThumbnailHeight:  300,
		ThumbnailQuality: 80,
		ScanWindow:       10 * 1024,
		UploadPrefix:     "uploads",
		ProcessedPrefix:  "processed",
	}
}

func newTestProcessor(store *fakeStore) *Processor {
	p := NewProcessor(store, processorPolicy())
	p.newID = func() string { return "33333333-3333-3333-3333-333333333333" }
	p.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return p
}

func testKey(filename string) domain.StorageKey {
	return domain.StorageKey{
		UserID:   "11111111-1111-1111-1111-111111111111",
		OrderID:  "22222222-2222-2222-2222-222222222222",
		Filename: filename,
	}
}

func TestClassify(t *testing.T) {
	policy := processorPolicy()

	tests := []struct {
		contentType string
		want        Kind
		wantOK      bool
	}{
		{"image/jpeg", KindImage, true},
		{"image/webp", KindImage, true},
		{"video/mp4", KindVideo, true},
		{"application/pdf", KindDocument, true},
		{"text/plain", KindDocument, true},
		{"application/zip", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := Classify(policy, tt.contentType)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Classify(%q) = (%v, %v), want (%v, %v)", tt.contentType, got, ok, tt.want, tt.wantOK)
		}
	}
}
