package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
)

// placeholderThumbnail is a minimal valid 1x1 JPEG used as the static
// video thumbnail while transcoding remains deferred.
var placeholderThumbnail = []byte{
	0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46, 0x00, 0x01,
	0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xff, 0xdb, 0x00, 0x43,
	0x00, 0x03, 0x02, 0x02, 0x02, 0x02, 0x02, 0x03, 0x02, 0x02, 0x02, 0x03,
	0x03, 0x03, 0x03, 0x04, 0x06, 0x04, 0x04, 0x04, 0x04, 0x04, 0x08, 0x06,
	0x06, 0x05, 0x06, 0x09, 0x08, 0x0a, 0x0a, 0x09, 0x08, 0x09, 0x09, 0x0a,
	0x0c, 0x0f, 0x0c, 0x0a, 0x0b, 0x0e, 0x0b, 0x09, 0x09, 0x0d, 0x11, 0x0d,
	0x0e, 0x0f, 0x10, 0x10, 0x11, 0x10, 0x0a, 0x0c, 0x12, 0x13, 0x12, 0x10,
	0x13, 0x0f, 0x10, 0x10, 0x10, 0xff, 0xc9, 0x00, 0x0b, 0x08, 0x00, 0x01,
	0x00, 0x01, 0x01, 0x01, 0x11, 0x00, 0xff, 0xcc, 0x00, 0x06, 0x00, 0x10,
	0x10, 0x05, 0xff, 0xda, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3f, 0x00,
	0xd2, 0xcf, 0x20, 0xff, 0xd9,
}

// processVideo copies the upload through to the processed location without
// transcoding and attaches a static placeholder thumbnail. Unlike the
// image path there is no cleanup of partial artifacts on failure; the only
// partial-write window is a single idempotent copy.
func (p *Processor) processVideo(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata, result domain.ProcessingResult) domain.ProcessingResult {
	processedKey := key.ProcessedKey(p.policy.ProcessedPrefix)
	thumbKey := domain.VideoThumbnailKey(processedKey)
	uploadKey := key.UploadKey(p.policy.UploadPrefix)

	fail := func(err error) domain.ProcessingResult {
		result.Status = domain.StatusFailed
		result.Error = fmt.Sprintf("Video processing failed: %v", err)
		return result
	}

	objectMetadata := map[string]string{
		"processed-at": p.now().UTC().Format(time.RFC3339),
		"file-id":      result.FileID,
	}
	if err := p.store.Copy(ctx, bucket, uploadKey, processedKey, meta.ContentType, objectMetadata); err != nil {
		return fail(err)
	}

	if err := p.store.Put(ctx, bucket, thumbKey, placeholderThumbnail, "image/jpeg", map[string]string{"file-id": result.FileID}); err != nil {
		return fail(err)
	}

	if err := p.store.Delete(ctx, bucket, uploadKey); err != nil {
		return fail(err)
	}

	result.Status = domain.StatusProcessed
	result.ProcessedURL = objectURL(bucket, processedKey)
	result.ThumbnailURL = objectURL(bucket, thumbKey)
	return result
}
