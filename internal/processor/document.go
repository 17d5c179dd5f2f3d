package processor

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
	apperrors "github.com/ateneo-connect/upload-pipeline/internal/errors"
)

// processDocument scans the head of the document for disallowed patterns
// and, when clean, copies it through to the processed location. A scan
// that cannot be performed treats the document as clean: availability over
// strictness, with a logged warning.
func (p *Processor) processDocument(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata, result domain.ProcessingResult) domain.ProcessingResult {
	processedKey := key.ProcessedKey(p.policy.ProcessedPrefix)
	uploadKey := key.UploadKey(p.policy.UploadPrefix)

	fail := func(err error) domain.ProcessingResult {
		result.Status = domain.StatusFailed
		result.Error = err.Error()
		return result
	}

	window, err := p.store.GetRange(ctx, bucket, uploadKey, p.policy.ScanWindow)
	if err != nil {
		log.WithError(err).WithField("key", uploadKey).Warn("Content scan unavailable, treating document as clean")
	} else if reason, found := scanContent(window); found {
		return fail(apperrors.ScanFailedError(reason))
	}

	objectMetadata := map[string]string{
		"scanned-at":  p.now().UTC().Format(time.RFC3339),
		"scan-result": "clean",
		"file-id":     result.FileID,
	}
	if err := p.store.Copy(ctx, bucket, uploadKey, processedKey, meta.ContentType, objectMetadata); err != nil {
		return fail(fmt.Errorf("Document processing failed: %w", err))
	}

	if err := p.store.Delete(ctx, bucket, uploadKey); err != nil {
		return fail(fmt.Errorf("Document processing failed: %w", err))
	}

	result.Status = domain.StatusProcessed
	result.ProcessedURL = objectURL(bucket, processedKey)
	return result
}
