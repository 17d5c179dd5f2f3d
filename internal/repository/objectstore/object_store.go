// Package objectstore provides object storage implementations and factory
// for the upload pipeline.
package objectstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectMeta is the metadata-only view of a stored object.
type ObjectMeta struct {
	Size        int64
	ContentType string
}

// ObjectStore defines the storage operations the pipeline consumes. The
// bucket is passed per call because it arrives with each delivery record.
type ObjectStore interface {
	Head(ctx context.Context, bucket, key string) (ObjectMeta, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	GetRange(ctx context.Context, bucket, key string, length int64) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error
	Copy(ctx context.Context, bucket, srcKey, dstKey, contentType string, metadata map[string]string) error
	Delete(ctx context.Context, bucket, key string) error
	GetStorageType() string
}

// Platform represents the type of object storage
type Platform string

const (
	S3Platform  Platform = "s3"
	GCSPlatform Platform = "gcs"
)

// Factory creates object store instances for the configured platform.
type Factory struct {
	awsConfig aws.Config
	gcsClient *storage.Client
}

// NewFactory creates a new factory
func NewFactory(awsConfig aws.Config, gcsClient *storage.Client) *Factory {
	return &Factory{
		awsConfig: awsConfig,
		gcsClient: gcsClient,
	}
}

// CreateStore creates an object store for the given platform.
func (f *Factory) CreateStore(platform Platform) (ObjectStore, error) {
	switch platform {
	case S3Platform:
		client := s3.NewFromConfig(f.awsConfig)
		return NewS3ObjectStore(client), nil
	case GCSPlatform:
		if f.gcsClient == nil {
			return nil, fmt.Errorf("GCS client not configured")
		}
		return NewGCSObjectStore(f.gcsClient), nil
	default:
		return nil, fmt.Errorf("unsupported storage platform: %s", platform)
	}
}
