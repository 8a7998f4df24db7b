package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxImageSize    = 5 * 1024 * 1024 // 5 MB
	imagePathPrefix = "listings"
)

var (
	ErrFileTooBig           = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType      = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")
	ErrDeleteFailed         = errors.New("failed to delete file")

	allowedImageTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

// UploadedImage describes a stored listing photo. URL is what goes into
// the listing's image list.
type UploadedImage struct {
	ObjectKey string
	URL       string
}

// StorageService stores listing photos in object storage.
type StorageService interface {
	// UploadListingImage validates and stores one photo for the owner
	// and returns its public URL.
	UploadListingImage(ctx context.Context, ownerID string, file io.Reader, fileSize int64, contentType string) (UploadedImage, error)

	// DeleteListingImage removes a stored photo by object key.
	DeleteListingImage(ctx context.Context, objectKey string) error
}

// MinIOStorageService implements StorageService against MinIO or any
// S3-compatible backend. The bucket is expected to allow public reads so
// listing pages can embed the URLs directly.
type MinIOStorageService struct {
	client     *minio.Client
	bucketName string
	baseURL    string
}

func NewMinIOStorageService(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	svc := &MinIOStorageService{
		client:     client,
		bucketName: bucketName,
		baseURL:    fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucketName),
	}

	if err := svc.ensureBucketExists(context.Background()); err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *MinIOStorageService) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}

	return nil
}

func (s *MinIOStorageService) UploadListingImage(ctx context.Context, ownerID string, file io.Reader, fileSize int64, contentType string) (UploadedImage, error) {
	normalizedContentType := strings.ToLower(strings.TrimSpace(contentType))
	if _, allowed := allowedImageTypes[normalizedContentType]; !allowed {
		return UploadedImage{}, ErrInvalidFileType
	}

	if fileSize > maxImageSize {
		return UploadedImage{}, ErrFileTooBig
	}

	fileExt := contentTypeToExtension(normalizedContentType)
	objectKey := fmt.Sprintf("%s/owner-%s/%s%s", imagePathPrefix, ownerID, uuid.New().String(), fileExt)

	metadata := map[string]string{
		"Content-Type": normalizedContentType,
		"Owner-ID":     ownerID,
		"Uploaded-At":  time.Now().UTC().Format(time.RFC3339),
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, file, fileSize, minio.PutObjectOptions{
		ContentType:  normalizedContentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return UploadedImage{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return UploadedImage{
		ObjectKey: objectKey,
		URL:       fmt.Sprintf("%s/%s", s.baseURL, objectKey),
	}, nil
}

func (s *MinIOStorageService) DeleteListingImage(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil // No-op for empty keys
	}

	err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	return nil
}

// contentTypeToExtension maps content type to file extension.
func contentTypeToExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}
