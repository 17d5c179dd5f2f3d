package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3ObjectStore manages S3 interactions for objects.
type S3ObjectStore struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3ObjectStore initializes a new S3ObjectStore.
func NewS3ObjectStore(client *s3.Client) *S3ObjectStore {
	return &S3ObjectStore{
		client:   client,
		uploader: manager.NewUploader(client),
	}
}

// GetStorageType returns the object store type.
func (s *S3ObjectStore) GetStorageType() string {
	return "s3"
}

// Head fetches object size and content type without downloading the body.
func (s *S3ObjectStore) Head(ctx context.Context, bucket, key string) (ObjectMeta, error) {
	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectMeta{}, err
	}

	meta := ObjectMeta{}
	if result.ContentLength != nil {
		meta.Size = *result.ContentLength
	}
	if result.ContentType != nil {
		meta.ContentType = *result.ContentType
	}
	return meta, nil
}

// Get downloads the full object body.
func (s *S3ObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// GetRange downloads the first length bytes of the object body. S3 serves
// the whole object when it is shorter than the requested range.
func (s *S3ObjectStore) GetRange(ctx context.Context, bucket, key string, length int64) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", length-1)),
	})
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// Put uploads an object with content type and user metadata attached.
func (s *S3ObjectStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	return err
}

// Copy performs a server-side copy, replacing content type and metadata on
// the destination object.
func (s *S3ObjectStore) Copy(ctx context.Context, bucket, srcKey, dstKey, contentType string, metadata map[string]string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(bucket),
		CopySource:        aws.String(bucket + "/" + url.PathEscape(srcKey)),
		Key:               aws.String(dstKey),
		ContentType:       aws.String(contentType),
		Metadata:          metadata,
		MetadataDirective: types.MetadataDirectiveReplace,
	})
	return err
}

// Delete removes an object.
func (s *S3ObjectStore) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}
