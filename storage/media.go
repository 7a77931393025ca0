package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fitly-app/stylist/utils"
	"github.com/google/uuid"
)

// MediaStore stores user images in S3 under per-user prefixes.
type MediaStore struct{}

// NewMediaStore returns the S3-backed media store.
func NewMediaStore() *MediaStore {
	return &MediaStore{}
}

// SaveSelfie uploads a selfie and returns its object key.
func (m *MediaStore) SaveSelfie(ctx context.Context, userID string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("selfies/%s/%s.jpg", userID, uuid.New().String())
	return utils.UploadFileToS3(ctx, bytes.NewReader(data), objectKey, "image/jpeg")
}

// SaveGarment uploads a garment photo and returns its object key.
func (m *MediaStore) SaveGarment(ctx context.Context, userID string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("garments/%s/%s.jpg", userID, uuid.New().String())
	return utils.UploadFileToS3(ctx, bytes.NewReader(data), objectKey, "image/jpeg")
}

// SaveGenerated uploads a generated outfit image and returns its object key.
func (m *MediaStore) SaveGenerated(ctx context.Context, userID string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("generated/%s/%s.png", userID, uuid.New().String())
	return utils.UploadFileToS3(ctx, bytes.NewReader(data), objectKey, "image/png")
}

// PresignURL resolves an object key to a time-limited fetchable URL.
func (m *MediaStore) PresignURL(ctx context.Context, key string) (string, error) {
	return utils.GetPresignedURL(ctx, key)
}
