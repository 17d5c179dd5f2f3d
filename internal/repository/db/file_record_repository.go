package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/ateneo-connect/upload-pipeline/internal/domain"
)

// DynamoDBAPI is the subset of the DynamoDB client the repository uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// FileRecordRepository manages DynamoDB persistence of file and error
// records.
type FileRecordRepository struct {
	client    DynamoDBAPI
	tableName string
	now       func() time.Time
}

// NewFileRecordRepository initializes a new FileRecordRepository.
func NewFileRecordRepository(client DynamoDBAPI, tableName string) *FileRecordRepository {
	return &FileRecordRepository{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// RecordSuccess persists a successful processing result. The write is a
// conditional create keyed on (order, file); when a redelivered event hits
// an existing record, it converges to an update of the mutable fields and
// bumps the version. Any failure other than the conditional conflict is
// returned to the caller.
func (repo *FileRecordRepository) RecordSuccess(ctx context.Context, key domain.StorageKey, result domain.ProcessingResult) error {
	record := domain.NewFileRecord(key, result, repo.now())

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal file record: %w", err)
	}

	_, err = repo.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(repo.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err == nil {
		return nil
	}

	var conditionFailed *types.ConditionalCheckFailedException
	if !errors.As(err, &conditionFailed) {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	return repo.updateExisting(ctx, record)
}

// updateExisting refreshes the mutable fields of an already-created record
// and increments its version.
func (repo *FileRecordRepository) updateExisting(ctx context.Context, record domain.FileRecord) error {
	metadata, err := attributevalue.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal record metadata: %w", err)
	}

	_, err = repo.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(repo.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: record.PK},
			"sk": &types.AttributeValueMemberS{Value: record.SK},
		},
		UpdateExpression: aws.String(
			"SET #status = :status, processedUrl = :processedUrl, thumbnailUrl = :thumbnailUrl, " +
				"#metadata = :metadata, updatedAt = :updatedAt, #version = #version + :one",
		),
		ExpressionAttributeNames: map[string]string{
			"#status":   "status",
			"#metadata": "metadata",
			"#version":  "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":       &types.AttributeValueMemberS{Value: record.Status},
			":processedUrl": &types.AttributeValueMemberS{Value: record.ProcessedURL},
			":thumbnailUrl": &types.AttributeValueMemberS{Value: record.ThumbnailURL},
			":metadata":     metadata,
			":updatedAt":    &types.AttributeValueMemberS{Value: record.UpdatedAt},
			":one":          &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update file record: %w", err)
	}
	return nil
}

// RecordError persists one ErrorRecord with a freshly generated id. Failed
// attempts are not deduplicated; the caller treats a persistence failure
// here as best-effort.
func (repo *FileRecordRepository) RecordError(ctx context.Context, key domain.StorageKey, message string) (string, error) {
	errorID := uuid.NewString()
	record := domain.NewErrorRecord(key, errorID, message, repo.now())

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal error record: %w", err)
	}

	_, err = repo.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(repo.tableName),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create error record: %w", err)
	}
	return errorID, nil
}
