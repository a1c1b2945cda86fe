package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"catalog-service/repository"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Renditions written for every uploaded image. The bytes are stored as
// received; resizing is left to the CDN.
var imageRenditions = []string{"original", "medium", "small"}

const DefaultPresignExpiry = 15 * time.Minute

type ImageService struct {
	blobs    repository.BlobStore
	products *ProductService
	now      func() time.Time
}

func NewImageService(blobs repository.BlobStore, products *ProductService) *ImageService {
	return &ImageService{blobs: blobs, products: products, now: time.Now}
}

// imageFilename builds "<unix millis>_<slugged name><ext>" so keys are URL safe and unique per upload.
func (s *ImageService) imageFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), base, ext)
}

func productImageKey(productID, rendition, filename string) string {
	return fmt.Sprintf("products/%s/%s_%s", productID, rendition, filename)
}

// UploadProductImage stores every rendition in parallel and appends the
// original's URL to the product. If any upload fails the others are removed.
func (s *ImageService) UploadProductImage(ctx context.Context, productID, filename, contentType string, data []byte) (*ImageUploadResult, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	name := s.imageFilename(filename)

	urls := make([]string, len(imageRenditions))
	errs := make([]error, len(imageRenditions))
	var wg sync.WaitGroup
	for i, rendition := range imageRenditions {
		wg.Add(1)
		go func(i int, rendition string) {
			defer wg.Done()
			urls[i], errs[i] = s.blobs.Upload(ctx, productImageKey(productID, rendition, name), contentType, data)
		}(i, rendition)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		for j, url := range urls {
			if errs[j] == nil && url != "" {
				if delErr := s.blobs.Delete(ctx, url); delErr != nil {
					zap.L().Warn("failed to remove partial image upload", zap.String("url", url), zap.Error(delErr))
				}
			}
		}
		return nil, fmt.Errorf("upload %s image: %w", imageRenditions[i], err)
	}

	result := &ImageUploadResult{Original: urls[0], Medium: urls[1], Small: urls[2]}
	if _, err := s.products.AppendImage(ctx, productID, result.Original); err != nil {
		return nil, err
	}
	zap.L().Info("product image uploaded", zap.String("product_id", productID), zap.String("url", result.Original))
	return result, nil
}

// PresignProductImage returns a URL the client can PUT the original rendition to directly.
func (s *ImageService) PresignProductImage(ctx context.Context, productID, filename, contentType string, expires time.Duration) (repository.PresignedUpload, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return repository.PresignedUpload{}, err
	}
	if expires <= 0 {
		expires = DefaultPresignExpiry
	}
	key := productImageKey(productID, imageRenditions[0], s.imageFilename(filename))
	return s.blobs.PresignUpload(ctx, key, contentType, expires)
}
