package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MaxImageSize is the largest image accepted for avatars
const MaxImageSize = 5 << 20

// ErrUnsupportedImage is returned for uploads that are not a known image type
var ErrUnsupportedImage = errors.New("unsupported image type")

// UploadResult contains the result of an image upload
type UploadResult struct {
	URL      string
	Key      string // object key in storage
	FileName string
	FileSize int64
	MimeType string
}

// MinIOStorage stores public images in a MinIO bucket
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	endpoint  string
	publicURL string // External URL
	useSSL    bool
}

// Config holds MinIO connection configuration
type Config struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinIO connects to MinIO and makes sure the bucket exists and is publicly readable
func NewMinIO(ctx context.Context, cfg Config) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.WithField("bucket", cfg.Bucket).Info("📦 Created MinIO bucket")

		if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
			log.WithError(err).Warn("⚠️  Failed to set bucket policy")
		}
	}

	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  cfg.Endpoint,
		publicURL: cfg.PublicURL,
		useSSL:    cfg.UseSSL,
	}, nil
}

func publicReadPolicy(bucket string) string {
	return `{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::` + bucket + `/*"]
		}]
	}`
}

// UploadImage stores an image under folder/<owner>/<uuid><ext>
func (s *MinIOStorage) UploadImage(ctx context.Context, r io.Reader, size int64, fileName, contentType, folder, owner string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = imageContentType(ext)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedImage
	}

	key := objectKey(folder, owner, ext, time.Now())
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &UploadResult{
		URL:      s.PublicURL(key),
		Key:      key,
		FileName: fileName,
		FileSize: size,
		MimeType: contentType,
	}, nil
}

// Delete removes an object
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PublicURL returns the public URL for an object
func (s *MinIOStorage) PublicURL(key string) string {
	return buildPublicURL(s.publicURL, s.endpoint, s.bucket, key, s.useSSL)
}

func buildPublicURL(publicURL, endpoint, bucket, key string, useSSL bool) string {
	if publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(publicURL, "/"), bucket, key)
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, key)
}

func objectKey(folder, owner, ext string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s-%s%s", folder, owner, at.Format("20060102"), uuid.New().String(), ext)
}

// imageContentType returns the MIME type for image extensions, empty otherwise
func imageContentType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return ""
	}
}
