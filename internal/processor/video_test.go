package processor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
)

func TestProcessVideoCopiesThrough(t *testing.T) {
	store := newFakeStore()
	key := testKey("clip.mp4")
	uploadKey := "uploads/" + key.UserID + "/" + key.OrderID + "/clip.mp4"
	processedKey := "processed/" + key.UserID + "/" + key.OrderID + "/clip.mp4"
	thumbKey := "processed/" + key.UserID + "/" + key.OrderID + "/clip_thumb.jpg"
	store.objects[uploadKey] = []byte("not really mpeg4")

	p := newTestProcessor(store)
	result := p.Process(context.Background(), "bucket", key, domain.FileMetadata{Size: 16, ContentType: "video/mp4"})

	if result.Status != domain.StatusProcessed {
		t.Fatalf("status = %q, error = %q", result.Status, result.Error)
	}
	if result.ProcessedURL != "bucket/"+processedKey {
		t.Errorf("processed url = %q", result.ProcessedURL)
	}
	if result.ThumbnailURL != "bucket/"+thumbKey {
		t.Errorf("thumbnail url = %q", result.ThumbnailURL)
	}
	if _, exists := store.objects[uploadKey]; exists {
		t.Error("original upload was not deleted")
	}
	if !bytes.Equal(store.objects[thumbKey], placeholderThumbnail) {
		t.Error("thumbnail is not the static placeholder")
	}
}

func TestProcessVideoThumbnailIsValidJPEG(t *testing.T) {
	if len(placeholderThumbnail) < 4 {
		t.Fatal("placeholder too short")
	}
	if placeholderThumbnail[0] != 0xff || placeholderThumbnail[1] != 0xd8 {
		t.Error("placeholder missing JPEG SOI marker")
	}
	end := placeholderThumbnail[len(placeholderThumbnail)-2:]
	if end[0] != 0xff || end[1] != 0xd9 {
		t.Error("placeholder missing JPEG EOI marker")
	}
}

func TestProcessVideoCopyFailureLeavesArtifacts(t *testing.T) {
	store := newFakeStore()
	key := testKey("clip.mp4")
	uploadKey := "uploads/" + key.UserID + "/" + key.OrderID + "/clip.mp4"
	store.objects[uploadKey] = []byte("not really mpeg4")
	store.copyErr = errors.New("copy refused")

	p := newTestProcessor(store)
	result := p.Process(context.Background(), "bucket", key, domain.FileMetadata{Size: 16, ContentType: "video/mp4"})

	if result.Status != domain.StatusFailed {
		t.Fatalf("status = %q, want failed", result.Status)
	}
	if !strings.Contains(result.Error, "Video processing failed") {
		t.Errorf("error = %q", result.Error)
	}
	// The video path performs no cleanup on failure.
	if len(store.deletes) != 0 {
		t.Errorf("video failure triggered deletes: %v", store.deletes)
	}
	if _, exists := store.objects[uploadKey]; !exists {
		t.Error("original upload disappeared")
	}
}
