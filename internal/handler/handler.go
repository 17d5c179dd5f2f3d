// Package handler dispatches S3 delivery batches through the upload
// processing pipeline, isolating per-file failures so a bad file never
// blocks the rest of the batch.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	log "github.com/sirupsen/logrus"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
	"github.com/ateneo-connect/upload-pipeline/internal/validation"
)

type MetadataValidator interface {
	Validate(ctx context.Context, bucket, key string) (domain.FileMetadata, error)
}

type ContentProcessor interface {
	Process(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata) domain.ProcessingResult
}

type RecordRepository interface {
	RecordSuccess(ctx context.Context, key domain.StorageKey, result domain.ProcessingResult) error
	RecordError(ctx context.Context, key domain.StorageKey, message string) (string, error)
}

type Notifier interface {
	NotifySuccess(ctx context.Context, key domain.StorageKey, result domain.ProcessingResult)
	NotifyError(ctx context.Context, key domain.StorageKey, message string)
}

type Alerter interface {
	Alert(ctx context.Context, err error, key string)
}

// Handler is the ingestion dispatcher for one Lambda invocation.
type Handler struct {
	validator    MetadataValidator
	processor    ContentProcessor
	records      RecordRepository
	notifier     Notifier
	alerter      Alerter
	uploadPrefix string
}

// NewHandler creates a new Handler.
func NewHandler(validator MetadataValidator, processor ContentProcessor, records RecordRepository, notifier Notifier, alerter Alerter, uploadPrefix string) *Handler {
	return &Handler{
		validator:    validator,
		processor:    processor,
		records:      records,
		notifier:     notifier,
		alerter:      alerter,
		uploadPrefix: uploadPrefix,
	}
}

// Handle processes every record in the batch independently. Validation and
// processing failures are recorded and notified per file; only unexpected
// panics surface as a returned error so the platform redelivers the batch.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) error {
	var fatal []error
	for _, record := range event.Records {
		if err := h.handleRecord(ctx, record); err != nil {
			fatal = append(fatal, err)
		}
	}
	return errors.Join(fatal...)
}

func (h *Handler) handleRecord(ctx context.Context, record events.S3EventRecord) (err error) {
	bucket := record.S3.Bucket.Name
	rawKey := decodeKey(record.S3.Object.Key)

	// Panics anywhere in the per-file pipeline are unexpected platform
	// errors: record and alert best-effort, then surface them so the
	// delivery source retries.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error processing %s: %v", rawKey, r)
			log.WithField("key", rawKey).Error(err)
			if key, parseErr := validation.ParseUploadKey(rawKey, h.uploadPrefix); parseErr == nil {
				if _, recErr := h.records.RecordError(ctx, key, err.Error()); recErr != nil {
					log.WithError(recErr).Warn("Failed to record error for unexpected failure")
				}
			}
			h.alerter.Alert(ctx, err, rawKey)
		}
	}()

	key, parseErr := validation.ParseUploadKey(rawKey, h.uploadPrefix)
	if parseErr != nil {
		// No identifiers to notify against; not an error worth recording.
		log.WithField("key", rawKey).WithError(parseErr).Info("Skipping object with invalid upload key")
		return nil
	}

	logger := log.WithFields(log.Fields{
		"userId":   key.UserID,
		"orderId":  key.OrderID,
		"fileName": key.Filename,
	})

	meta, validateErr := h.validator.Validate(ctx, bucket, rawKey)
	if validateErr != nil {
		logger.WithError(validateErr).Warn("Upload rejected by metadata validation")
		h.recordAndNotifyError(ctx, key, validateErr.Error())
		return nil
	}

	result := h.processor.Process(ctx, bucket, key, meta)
	if result.Status == domain.StatusFailed {
		logger.WithField("error", result.Error).Warn("Content processing failed")
		h.recordAndNotifyError(ctx, key, result.Error)
		return nil
	}

	if persistErr := h.records.RecordSuccess(ctx, key, result); persistErr != nil {
		// The artifacts exist and the user considers the file processed;
		// losing the record is a known gap rather than a batch failure.
		logger.WithError(persistErr).Error("Failed to persist file record")
		return nil
	}

	h.notifier.NotifySuccess(ctx, key, result)
	logger.WithField("fileId", result.FileID).Info("File processed")
	return nil
}

// recordAndNotifyError records one failed attempt and notifies the user.
// Both sides are best-effort; a persistence failure here must never mask
// the original error.
func (h *Handler) recordAndNotifyError(ctx context.Context, key domain.StorageKey, message string) {
	if _, err := h.records.RecordError(ctx, key, message); err != nil {
		log.WithError(err).Warn("Failed to persist error record")
	}
	h.notifier.NotifyError(ctx, key, message)
}

// decodeKey undoes the URL encoding applied to object keys in delivery
// records, including the + for space convention.
func decodeKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}
