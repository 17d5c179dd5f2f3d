package domain

import (
	"path"
	"strings"
)

// UploadKey reconstructs the raw object key for an upload.
func (k StorageKey) UploadKey(uploadPrefix string) string {
	return path.Join(uploadPrefix, k.UserID, k.OrderID, k.Filename)
}

// ProcessedKey mirrors the upload key under the processed prefix.
func (k StorageKey) ProcessedKey(processedPrefix string) string {
	return path.Join(processedPrefix, k.UserID, k.OrderID, k.Filename)
}

// ThumbnailKey inserts _thumb before the final extension of an image's
// processed key: processed/u/o/photo.jpg -> processed/u/o/photo_thumb.jpg.
// A key without an extension gets the suffix appended.
func ThumbnailKey(processedKey string) string {
	ext := path.Ext(processedKey)
	if ext == "" {
		return processedKey + "_thumb"
	}
	return strings.TrimSuffix(processedKey, ext) + "_thumb" + ext
}

// VideoThumbnailKey replaces the extension of a video's processed key with
// _thumb.jpg, since the placeholder thumbnail is always a JPEG.
func VideoThumbnailKey(processedKey string) string {
	return strings.TrimSuffix(processedKey, path.Ext(processedKey)) + "_thumb.jpg"
}
