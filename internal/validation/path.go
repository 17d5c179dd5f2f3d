// Package validation checks upload keys and object metadata before any
// processing work is done.
package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
	apperrors "github.com/ateneo-connect/upload-pipeline/internal/errors"
)

// disallowedFilenameChars are rejected anywhere in a filename, alongside
// ASCII control characters.
const disallowedFilenameChars = `<>:"|?*`

// ParseUploadKey validates the structure of a raw object key
// (uploads/{userId}/{orderId}/{filename}) and extracts its identifiers.
// Pure: no I/O, and invalid keys come back as errors, never panics. The
// filename may itself contain slashes, so trailing segments are rejoined.
func ParseUploadKey(rawKey, uploadPrefix string) (domain.StorageKey, error) {
	segments := strings.Split(rawKey, "/")
	if len(segments) < 4 {
		return domain.StorageKey{}, fmt.Errorf("%w: expected at least 4 path segments, got %d", apperrors.ErrInvalidUploadKey, len(segments))
	}

	if segments[0] != uploadPrefix {
		return domain.StorageKey{}, fmt.Errorf("%w: key does not start with %q", apperrors.ErrInvalidUploadKey, uploadPrefix)
	}

	userID := segments[1]
	if !isCanonicalUUID(userID) {
		return domain.StorageKey{}, fmt.Errorf("%w: user id %q is not a valid UUID", apperrors.ErrInvalidUploadKey, userID)
	}

	orderID := segments[2]
	if !isCanonicalUUID(orderID) {
		return domain.StorageKey{}, fmt.Errorf("%w: order id %q is not a valid UUID", apperrors.ErrInvalidUploadKey, orderID)
	}

	filename := strings.Join(segments[3:], "/")
	if filename == "" {
		return domain.StorageKey{}, fmt.Errorf("%w: filename is empty", apperrors.ErrInvalidUploadKey)
	}
	if err := checkFilename(filename); err != nil {
		return domain.StorageKey{}, err
	}

	return domain.StorageKey{
		UserID:   userID,
		OrderID:  orderID,
		Filename: filename,
	}, nil
}

// isCanonicalUUID accepts only the 36-character hyphenated form; uuid.Parse
// alone would also admit braced and URN variants.
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func checkFilename(filename string) error {
	for _, r := range filename {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: filename contains control characters", apperrors.ErrInvalidUploadKey)
		}
		if strings.ContainsRune(disallowedFilenameChars, r) {
			return fmt.Errorf("%w: filename contains disallowed character %q", apperrors.ErrInvalidUploadKey, r)
		}
	}
	return nil
}
