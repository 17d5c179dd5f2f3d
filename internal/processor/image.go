package processor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/h2non/bimg"
	log "github.com/sirupsen/logrus"

	"github.com/ateneo-connect/upload-pipeline/internal/config"
	"github.com/ateneo-connect/upload-pipeline/internal/domain"
	apperrors "github.com/ateneo-connect/upload-pipeline/internal/errors"
)

// imageTarget decides the re-encoding for one image: large PNGs become
// WebP, JPEGs are re-encoded progressive, everything else keeps its
// format. Pure so the rule is testable without libvips fixtures.
func imageTarget(policy config.Policy, contentType string, size int64) (bimg.ImageType, string, bool) {
	switch contentType {
	case "image/png":
		if size > policy.WebPThreshold {
			return bimg.WEBP, "image/webp", false
		}
		return bimg.PNG, contentType, false
	case "image/jpeg":
		return bimg.JPEG, contentType, true
	case "image/webp":
		return bimg.WEBP, contentType, false
	case "image/gif":
		return bimg.GIF, contentType, false
	default:
		return bimg.UNKNOWN, contentType, false
	}
}

// processImage downloads, re-encodes, and thumbnails an image, then swaps
// the processed artifacts in for the original upload. Any failure after a
// partial write triggers best-effort cleanup of the artifacts.
func (p *Processor) processImage(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata, result domain.ProcessingResult) domain.ProcessingResult {
	processedKey := key.ProcessedKey(p.policy.ProcessedPrefix)
	thumbKey := domain.ThumbnailKey(processedKey)

	fail := func(err error) domain.ProcessingResult {
		p.cleanupImage(ctx, bucket, processedKey, thumbKey)
		result.Status = domain.StatusFailed
		result.Error = fmt.Sprintf("Image processing failed: %v", err)
		return result
	}

	data, err := p.store.Get(ctx, bucket, key.UploadKey(p.policy.UploadPrefix))
	if err != nil {
		return fail(err)
	}

	dimensions, err := bimg.NewImage(data).Size()
	if err != nil {
		return fail(fmt.Errorf("%w: %v", apperrors.ErrDimensionsUnknown, err))
	}

	imageType, outContentType, interlace := imageTarget(p.policy, meta.ContentType, int64(len(data)))
	processed, err := bimg.NewImage(data).Process(bimg.Options{
		Type:      imageType,
		Quality:   p.policy.ImageQuality,
		Interlace: interlace,
	})
	if err != nil {
		return fail(err)
	}

	objectMetadata := map[string]string{
		"processed-at":    p.now().UTC().Format(time.RFC3339),
		"file-id":         result.FileID,
		"original-width":  strconv.Itoa(dimensions.Width),
		"original-height": strconv.Itoa(dimensions.Height),
	}
	if err := p.store.Put(ctx, bucket, processedKey, processed, outContentType, objectMetadata); err != nil {
		return fail(err)
	}

	thumbnail, err := bimg.NewImage(data).Process(bimg.Options{
		Width:   p.policy.ThumbnailWidth,
		Height:  p.policy.ThumbnailHeight,
		Crop:    true,
		Type:    bimg.JPEG,
		Quality: p.policy.ThumbnailQuality,
	})
	if err != nil {
		return fail(err)
	}
	if err := p.store.Put(ctx, bucket, thumbKey, thumbnail, "image/jpeg", map[string]string{"file-id": result.FileID}); err != nil {
		return fail(err)
	}

	if err := p.store.Delete(ctx, bucket, key.UploadKey(p.policy.UploadPrefix)); err != nil {
		return fail(err)
	}

	result.Status = domain.StatusProcessed
	result.ProcessedURL = objectURL(bucket, processedKey)
	result.ThumbnailURL = objectURL(bucket, thumbKey)
	result.Metadata.Type = outContentType
	result.Metadata.Width = dimensions.Width
	result.Metadata.Height = dimensions.Height
	return result
}

// cleanupImage removes partially written artifacts after a mid-way
// failure. Deletion errors are swallowed and logged, never escalated.
func (p *Processor) cleanupImage(ctx context.Context, bucket string, keys ...string) {
	for _, key := range keys {
		if err := p.store.Delete(ctx, bucket, key); err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to clean up partial artifact")
		}
	}
}
