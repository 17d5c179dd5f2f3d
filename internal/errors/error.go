package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrMetadataFetch     = errors.New("failed to fetch object metadata")
	ErrDimensionsUnknown = errors.New("unable to determine image dimensions")
	ErrInvalidUploadKey  = errors.New("invalid upload key")
)

// ScanFailedError formats the failure produced when the document scanner
// matches a disallowed pattern.
func ScanFailedError(reason string) error {
	return fmt.Errorf("Virus scan failed: %s", reason)
}

func ConfigNotSetError(config string) error {
	return fmt.Errorf("The %s environment variable must be set", config)
}
