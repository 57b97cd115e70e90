package assets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

const signedURLTTL = 5 * time.Minute

type ItemImageStore interface {
	UpdateItemImage(ctx context.Context, itemID uuid.UUID, imagePath string) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutImage(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	store   ItemImageStore
	storage ObjectStorage
	now     func() time.Time
}

type ItemImage struct {
	ItemID    uuid.UUID
	ImagePath string
	URL       string
}

func NewService(store ItemImageStore, storage ObjectStorage) *Service {
	return &Service{
		store:   store,
		storage: storage,
		now:     time.Now,
	}
}

// UploadItemImage stores an item picture and points the item's image_path at
// it. The object is removed again if the record update fails.
func (s *Service) UploadItemImage(ctx context.Context, itemID uuid.UUID, fileName, contentType string, body io.Reader, size int64) (ItemImage, error) {
	if itemID == uuid.Nil || body == nil || size <= 0 {
		return ItemImage{}, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return ItemImage{}, fmt.Errorf("asset dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return ItemImage{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := s.buildImageObjectKey(itemID, fileName)
	if err != nil {
		return ItemImage{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutImage(ctx, objectKey, body, size, contentType); err != nil {
		return ItemImage{}, fmt.Errorf("put object: %w", err)
	}

	if err := s.store.UpdateItemImage(ctx, itemID, objectKey); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return ItemImage{}, fmt.Errorf("update item image: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return ItemImage{}, fmt.Errorf("presign image url: %w", err)
	}

	return ItemImage{
		ItemID:    itemID,
		ImagePath: objectKey,
		URL:       url,
	}, nil
}

// ImageURL turns a stored image path into a short-lived signed URL. An empty
// path yields an empty URL.
func (s *Service) ImageURL(ctx context.Context, imagePath string) (string, error) {
	if strings.TrimSpace(imagePath) == "" {
		return "", nil
	}
	if s.storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}
	return s.storage.PresignGet(ctx, imagePath, signedURLTTL)
}

func (s *Service) buildImageObjectKey(itemID uuid.UUID, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := s.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("items/%s/%s_%s%s", itemID, stamp, hex.EncodeToString(rnd), ext), nil
}
