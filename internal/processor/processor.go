// Package processor transforms validated uploads into processed artifacts.
// Dispatch is over a closed set of content kinds; unknown types are
// rejected by the metadata validator before they ever reach this package.
package processor

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ateneo-connect/upload-pipeline/internal/config"
	"github.com/ateneo-connect/upload-pipeline/internal/domain"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/objectstore"
)

// Kind classifies a validated content type.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
	KindDocument
)

// Classify maps a validated content type onto its processing kind. The
// second return is false for types outside every allow-list; callers treat
// that as a programming error since validation happens upstream.
func Classify(policy config.Policy, contentType string) (Kind, bool) {
	switch {
	case slices.Contains(policy.ImageTypes, contentType):
		return KindImage, true
	case slices.Contains(policy.VideoTypes, contentType):
		return KindVideo, true
	case slices.Contains(policy.DocumentTypes, contentType):
		return KindDocument, true
	default:
		return 0, false
	}
}

// Processor runs the per-variant content transformations.
type Processor struct {
	store  objectstore.ObjectStore
	policy config.Policy
	newID  func() string
	now    func() time.Time
}

// NewProcessor creates a new Processor.
func NewProcessor(store objectstore.ObjectStore, policy config.Policy) *Processor {
	return &Processor{
		store:  store,
		policy: policy,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Process transforms one uploaded object and returns the outcome. The
// result always comes back, Failed results carry the error string; only
// the FileID generated here anchors idempotent persistence downstream.
func (p *Processor) Process(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata) domain.ProcessingResult {
	result := domain.ProcessingResult{
		FileID:       p.newID(),
		OriginalName: key.Filename,
		Metadata: domain.ResultMetadata{
			Size: meta.Size,
			Type: meta.ContentType,
		},
	}

	kind, ok := Classify(p.policy, meta.ContentType)
	if !ok {
		result.Status = domain.StatusFailed
		result.Error = "unclassifiable content type: " + meta.ContentType
		return result
	}

	switch kind {
	case KindImage:
		return p.processImage(ctx, bucket, key, meta, result)
	case KindVideo:
		return p.processVideo(ctx, bucket, key, meta, result)
	default:
		return p.processDocument(ctx, bucket, key, meta, result)
	}
}

func objectURL(bucket, key string) string {
	return bucket + "/" + key
}
