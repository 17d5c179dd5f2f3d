package validation

import (
	"context"
	"fmt"
	"slices"

	"github.com/ateneo-connect/upload-pipeline/internal/config"
	"github.com/ateneo-connect/upload-pipeline/internal/domain"
	apperrors "github.com/ateneo-connect/upload-pipeline/internal/errors"
	"github.com/ateneo-connect/upload-pipeline/internal/repository/objectstore"
)

// MetadataValidator checks the stored object against the processing policy
// using a metadata-only fetch; the body is never downloaded here.
type MetadataValidator struct {
	store  objectstore.ObjectStore
	policy config.Policy
}

// NewMetadataValidator creates a new MetadataValidator.
func NewMetadataValidator(store objectstore.ObjectStore, policy config.Policy) *MetadataValidator {
	return &MetadataValidator{
		store:  store,
		policy: policy,
	}
}

// Validate fetches size and content type for the object and applies the
// policy. A fetch failure is a transient per-file condition
// (apperrors.ErrMetadataFetch), not a validator bug.
func (v *MetadataValidator) Validate(ctx context.Context, bucket, key string) (domain.FileMetadata, error) {
	meta, err := v.store.Head(ctx, bucket, key)
	if err != nil {
		return domain.FileMetadata{}, fmt.Errorf("%w: %v", apperrors.ErrMetadataFetch, err)
	}

	if meta.Size == 0 {
		return domain.FileMetadata{}, apperrors.ErrEmptyFile
	}
	if meta.Size > v.policy.MaxFileSize {
		return domain.FileMetadata{}, fmt.Errorf("%w: %d bytes, limit is %d", apperrors.ErrFileTooLarge, meta.Size, v.policy.MaxFileSize)
	}
	if !slices.Contains(v.policy.AllowedTypes(), meta.ContentType) {
		return domain.FileMetadata{}, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedType, meta.ContentType)
	}

	return domain.FileMetadata{
		Size:        meta.Size,
		ContentType: meta.ContentType,
	}, nil
}
