package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
)

const (
	testUserID  = "11111111-1111-1111-1111-111111111111"
	testOrderID = "22222222-2222-2222-2222-222222222222"
)

type fakeValidator struct {
	meta  domain.FileMetadata
	err   error
	calls int
}

func (f *fakeValidator) Validate(ctx context.Context, bucket, key string) (domain.FileMetadata, error) {
	f.calls++
	return f.meta, f.err
}

type fakeProcessor struct {
	result   domain.ProcessingResult
	panicMsg string
	calls    int
	keys     []domain.StorageKey
}

func (f *fakeProcessor) Process(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata) domain.ProcessingResult {
	f.calls++
	f.keys = append(f.keys, key)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result
}

type fakeRecords struct {
	successes  []domain.ProcessingResult
	failures   []string
	successErr error
	errorErr   error
}

func (f *fakeRecords) RecordSuccess(ctx context.Context, key domain.StorageKey, result domain.ProcessingResult) error {
	if f.successErr != nil {
		return f.successErr
	}
	f.successes = append(f.successes, result)
	return nil
}

func (f *fakeRecords) RecordError(ctx context.Context, key domain.StorageKey, message string) (string, error) {
	if f.errorErr != nil {
		return "", f.errorErr
	}
	f.failures = append(f.failures, message)
	return "error-id", nil
}

type fakeNotifier struct {
	successes []string
	errors    []string
}

func (f *fakeNotifier) NotifySuccess(ctx context.Context, key domain.StorageKey, result domain.ProcessingResult) {
	f.successes = append(f.successes, result.FileID)
}

func (f *fakeNotifier) NotifyError(ctx context.Context, key domain.StorageKey, message string) {
	f.errors = append(f.errors, message)
}

type fakeAlerter struct {
	alerts []string
}

func (f *fakeAlerter) Alert(ctx context.Context, err error, key string) {
	f.alerts = append(f.alerts, key)
}

type fixture struct {
	validator *fakeValidator
	processor *fakeProcessor
	records   *fakeRecords
	notifier  *fakeNotifier
	alerter   *fakeAlerter
	handler   *Handler
}

func newFixture() *fixture {
	f := &fixture{
		validator: &fakeValidator{},
		processor: &fakeProcessor{},
		records:   &fakeRecords{},
		notifier:  &fakeNotifier{},
		alerter:   &fakeAlerter{},
	}
	f.handler = NewHandler(f.validator, f.processor, f.records, f.notifier, f.alerter, "uploads")
	return f
}

func s3Event(keys ...string) events.S3Event {
	var records []events.S3EventRecord
	for _, key := range keys {
		records = append(records, events.S3EventRecord{
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: "uploads-bucket"},
				Object: events.S3Object{Key: key},
			},
		})
	}
	return events.S3Event{Records: records}
}

func TestHandleProcessedFile(t *testing.T) {
	f := newFixture()
	f.validator.meta = domain.FileMetadata{Size: 2 * 1024 * 1024, ContentType: "image/jpeg"}
	f.processor.result = domain.ProcessingResult{
		FileID:       "file-1",
		OriginalName: "photo.jpg",
		ProcessedURL: "uploads-bucket/processed/photo.jpg",
		Status:       domain.StatusProcessed,
	}

	err := f.handler.Handle(context.Background(), s3Event("uploads/"+testUserID+"/"+testOrderID+"/photo.jpg"))

	require.NoError(t, err)
	require.Len(t, f.records.successes, 1)
	assert.Equal(t, []string{"file-1"}, f.notifier.successes)
	assert.Empty(t, f.records.failures)
	assert.Empty(t, f.notifier.errors)
	assert.Empty(t, f.alerter.alerts)
}

func TestHandleUnsupportedType(t *testing.T) {
	f := newFixture()
	f.validator.err = errors.New("unsupported file type: application/zip")

	err := f.handler.Handle(context.Background(), s3Event("uploads/"+testUserID+"/"+testOrderID+"/archive.zip"))

	require.NoError(t, err)
	assert.Zero(t, f.processor.calls, "rejected file must not be processed")
	require.Len(t, f.records.failures, 1)
	assert.Contains(t, f.records.failures[0], "unsupported file type")
	assert.Equal(t, f.records.failures, f.notifier.errors)
	assert.Empty(t, f.records.successes)
}

func TestHandleInvalidKeySkipsSilently(t *testing.T) {
	f := newFixture()

	err := f.handler.Handle(context.Background(), s3Event("downloads/"+testUserID+"/"+testOrderID+"/file.txt"))

	require.NoError(t, err)
	assert.Zero(t, f.validator.calls)
	assert.Zero(t, f.processor.calls)
	assert.Empty(t, f.records.failures)
	assert.Empty(t, f.notifier.errors)
}

func TestHandleProcessingFailure(t *testing.T) {
	f := newFixture()
	f.validator.meta = domain.FileMetadata{Size: 1024, ContentType: "application/pdf"}
	f.processor.result = domain.ProcessingResult{
		Status: domain.StatusFailed,
		Error:  "Virus scan failed: suspicious pattern \"<script\" detected",
	}

	err := f.handler.Handle(context.Background(), s3Event("uploads/"+testUserID+"/"+testOrderID+"/page.pdf"))

	require.NoError(t, err)
	require.Len(t, f.records.failures, 1)
	assert.Contains(t, f.records.failures[0], "Virus scan failed")
	assert.Len(t, f.notifier.errors, 1)
	assert.Empty(t, f.records.successes)
}

func TestHandlePersistenceFailureDoesNotFailBatch(t *testing.T) {
	f := newFixture()
	f.validator.meta = domain.FileMetadata{Size: 1024, ContentType: "image/jpeg"}
	f.processor.result = domain.ProcessingResult{FileID: "file-1", Status: domain.StatusProcessed}
	f.records.successErr = errors.New("table throttled")

	err := f.handler.Handle(context.Background(), s3Event("uploads/"+testUserID+"/"+testOrderID+"/photo.jpg"))

	require.NoError(t, err)
	assert.Empty(t, f.notifier.successes, "no success notification without a durable record")
	assert.Empty(t, f.alerter.alerts)
}

func TestHandleErrorRecordFailureDoesNotMaskOriginal(t *testing.T) {
	f := newFixture()
	f.validator.err = errors.New("unsupported file type: application/zip")
	f.records.errorErr = errors.New("table missing")

	err := f.handler.Handle(context.Background(), s3Event("uploads/"+testUserID+"/"+testOrderID+"/archive.zip"))

	require.NoError(t, err)
	// The user is still told about the original validation failure.
	require.Len(t, f.notifier.errors, 1)
	assert.Contains(t, f.notifier.errors[0], "unsupported file type")
}

func TestHandlePanicEscalatesAfterAlerting(t *testing.T) {
	f := newFixture()
	f.validator.meta = domain.FileMetadata{Size: 1024, ContentType: "image/jpeg"}
	f.processor.panicMsg = "nil pointer dereference"

	err := f.handler.Handle(context.Background(), s3Event("uploads/"+testUserID+"/"+testOrderID+"/photo.jpg"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil pointer dereference")
	require.Len(t, f.alerter.alerts, 1)
	require.Len(t, f.records.failures, 1, "best-effort error record for the unexpected failure")
}

func TestHandleIsolatesFailuresAcrossBatch(t *testing.T) {
	f := newFixture()
	f.validator.meta = domain.FileMetadata{Size: 1024, ContentType: "image/jpeg"}
	f.processor.result = domain.ProcessingResult{FileID: "file-2", Status: domain.StatusProcessed}

	event := s3Event(
		"uploads/"+testUserID+"/"+testOrderID+"/first.jpg",
		"uploads/"+testUserID+"/"+testOrderID+"/second.jpg",
	)

	// Only the first record panics.
	calls := 0
	original := f.processor
	f.handler = NewHandler(f.validator, processorFunc(func(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata) domain.ProcessingResult {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return original.result
	}), f.records, f.notifier, f.alerter, "uploads")

	err := f.handler.Handle(context.Background(), event)

	require.Error(t, err)
	assert.Equal(t, 2, calls, "second record still processed after the first panicked")
	assert.Equal(t, []string{"file-2"}, f.notifier.successes)
}

func TestHandleDecodesURLEncodedKeys(t *testing.T) {
	f := newFixture()
	f.validator.meta = domain.FileMetadata{Size: 1024, ContentType: "image/jpeg"}
	f.processor.result = domain.ProcessingResult{FileID: "file-1", Status: domain.StatusProcessed}

	err := f.handler.Handle(context.Background(), s3Event("uploads/"+testUserID+"/"+testOrderID+"/my+holiday+photo%281%29.jpg"))

	require.NoError(t, err)
	require.Len(t, f.processor.keys, 1)
	assert.Equal(t, "my holiday photo(1).jpg", f.processor.keys[0].Filename)
}

type processorFunc func(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata) domain.ProcessingResult

func (fn processorFunc) Process(ctx context.Context, bucket string, key domain.StorageKey, meta domain.FileMetadata) domain.ProcessingResult {
	return fn(ctx, bucket, key, meta)
}
