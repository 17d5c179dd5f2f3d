package objectstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
)

// GCSObjectStore implements ObjectStore for Google Cloud Storage.
type GCSObjectStore struct {
	client *storage.Client
}

// NewGCSObjectStore initializes a new GCSObjectStore.
func NewGCSObjectStore(client *storage.Client) *GCSObjectStore {
	return &GCSObjectStore{client: client}
}

// GetStorageType returns the object store type.
func (g *GCSObjectStore) GetStorageType() string {
	return "gcs"
}

// Head fetches object attributes without downloading the body.
func (g *GCSObjectStore) Head(ctx context.Context, bucket, key string) (ObjectMeta, error) {
	attrs, err := g.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return ObjectMeta{}, err
	}
	return ObjectMeta{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
	}, nil
}

// Get downloads the full object body.
func (g *GCSObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// GetRange downloads the first length bytes of the object body.
func (g *GCSObjectStore) GetRange(ctx context.Context, bucket, key string, length int64) ([]byte, error) {
	reader, err := g.client.Bucket(bucket).Object(key).NewRangeReader(ctx, 0, length)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// Put uploads an object with content type and user metadata attached.
func (g *GCSObjectStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error {
	writer := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	writer.Metadata = metadata

	if _, err := writer.Write(body); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// Copy performs a server-side copy, replacing content type and metadata on
// the destination object.
func (g *GCSObjectStore) Copy(ctx context.Context, bucket, srcKey, dstKey, contentType string, metadata map[string]string) error {
	src := g.client.Bucket(bucket).Object(srcKey)
	dst := g.client.Bucket(bucket).Object(dstKey)

	copier := dst.CopierFrom(src)
	copier.ContentType = contentType
	copier.Metadata = metadata

	_, err := copier.Run(ctx)
	return err
}

// Delete removes an object.
func (g *GCSObjectStore) Delete(ctx context.Context, bucket, key string) error {
	return g.client.Bucket(bucket).Object(key).Delete(ctx)
}
