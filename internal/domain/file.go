// Package domain holds the data model shared by the upload processing
// pipeline: the parsed storage key, transient processing results, and the
// durable DynamoDB records they project into.
package domain

import "time"

// StorageKey is the semantic form of an upload object key
// (uploads/{userId}/{orderId}/{filename}). It only ever exists after the
// path validator has accepted the raw key.
type StorageKey struct {
	UserID   string
	OrderID  string
	Filename string
}

// FileMetadata is what HeadObject reports about an uploaded object. It is
// fetched from storage rather than trusted from the upload path.
type FileMetadata struct {
	Size        int64
	ContentType string
}

// Processing status values.
const (
	StatusProcessed = "PROCESSED"
	StatusFailed    = "FAILED"
)

// ResultMetadata carries variant-specific facts about a processed file.
// Width/Height are set for images, Duration for videos (currently always
// zero while transcoding is deferred).
type ResultMetadata struct {
	Size     int64   `json:"size" dynamodbav:"size"`
	Type     string  `json:"type" dynamodbav:"type"`
	Width    int     `json:"width,omitempty" dynamodbav:"width,omitempty"`
	Height   int     `json:"height,omitempty" dynamodbav:"height,omitempty"`
	Duration float64 `json:"duration,omitempty" dynamodbav:"duration,omitempty"`
}

// ProcessingResult is the transient outcome of one processing attempt.
// FileID is generated once per attempt and anchors idempotent persistence;
// the result itself is never stored, only projected into a FileRecord or
// ErrorRecord.
type ProcessingResult struct {
	FileID       string
	OriginalName string
	ProcessedURL string
	ThumbnailURL string
	Metadata     ResultMetadata
	Status       string
	Error        string
}

// Record type discriminators.
const (
	RecordTypeFile  = "file"
	RecordTypeError = "error"
)

// FileRecord is the durable representation of a successfully processed
// file, keyed ORDER#{orderId} / FILE#{fileId} with a user-keyed GSI.
type FileRecord struct {
	PK           string         `dynamodbav:"pk"`
	SK           string         `dynamodbav:"sk"`
	GSI1PK       string         `dynamodbav:"gsi1pk"`
	GSI1SK       string         `dynamodbav:"gsi1sk"`
	FileID       string         `dynamodbav:"fileId"`
	OrderID      string         `dynamodbav:"orderId"`
	UserID       string         `dynamodbav:"userId"`
	OriginalName string         `dynamodbav:"originalName"`
	ProcessedURL string         `dynamodbav:"processedUrl"`
	ThumbnailURL string         `dynamodbav:"thumbnailUrl,omitempty"`
	Metadata     ResultMetadata `dynamodbav:"metadata"`
	Status       string         `dynamodbav:"status"`
	Type         string         `dynamodbav:"type"`
	Version      int            `dynamodbav:"version"`
	CreatedAt    string         `dynamodbav:"createdAt"`
	UpdatedAt    string         `dynamodbav:"updatedAt"`
}

// ErrorRecord is the durable representation of one failed processing
// attempt. Its id space is independent of FileRecord and failed attempts
// are deliberately not deduplicated.
type ErrorRecord struct {
	PK           string `dynamodbav:"pk"`
	SK           string `dynamodbav:"sk"`
	GSI1PK       string `dynamodbav:"gsi1pk"`
	GSI1SK       string `dynamodbav:"gsi1sk"`
	ErrorID      string `dynamodbav:"errorId"`
	OrderID      string `dynamodbav:"orderId"`
	UserID       string `dynamodbav:"userId"`
	Filename     string `dynamodbav:"fileName"`
	ErrorMessage string `dynamodbav:"errorMessage"`
	Type         string `dynamodbav:"type"`
	CreatedAt    string `dynamodbav:"createdAt"`
}

// NewFileRecord projects a successful ProcessingResult into its durable
// form. Version starts at 1; the persistence layer increments it when a
// redelivered event converges onto an existing record.
func NewFileRecord(key StorageKey, result ProcessingResult, now time.Time) FileRecord {
	ts := now.UTC().Format(time.RFC3339)
	return FileRecord{
		PK:           "ORDER#" + key.OrderID,
		SK:           "FILE#" + result.FileID,
		GSI1PK:       "USER#" + key.UserID,
		GSI1SK:       "FILE#" + result.FileID,
		FileID:       result.FileID,
		OrderID:      key.OrderID,
		UserID:       key.UserID,
		OriginalName: result.OriginalName,
		ProcessedURL: result.ProcessedURL,
		ThumbnailURL: result.ThumbnailURL,
		Metadata:     result.Metadata,
		Status:       result.Status,
		Type:         RecordTypeFile,
		Version:      1,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

// NewErrorRecord builds a durable record for one failed attempt.
func NewErrorRecord(key StorageKey, errorID, message string, now time.Time) ErrorRecord {
	return ErrorRecord{
		PK:           "ORDER#" + key.OrderID,
		SK:           "ERROR#" + errorID,
		GSI1PK:       "USER#" + key.UserID,
		GSI1SK:       "ERROR#" + errorID,
		ErrorID:      errorID,
		OrderID:      key.OrderID,
		UserID:       key.UserID,
		Filename:     key.Filename,
		ErrorMessage: message,
		Type:         RecordTypeError,
		CreatedAt:    now.UTC().Format(time.RFC3339),
	}
}

// Notification message types.
const (
	NotificationFileProcessed       = "FILE_PROCESSED"
	NotificationFileProcessingError = "FILE_PROCESSING_ERROR"
)

// NotificationMessage is the ephemeral envelope published to the user
// notification topic. Delivery is fire-and-forget; it is never persisted.
type NotificationMessage struct {
	UserID    string            `json:"userId"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp string            `json:"timestamp"`
}
