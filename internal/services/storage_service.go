// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/config"
)

const stagingPrefix = "staging/"

// StorageService stores media on S3, or on local disk when AWS credentials
// are absent. Uploads land under staging/ first; promotion moves the claimed
// keys under their owning entity's folder.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// StageImage stores processed image bytes under a fresh staging key. The key
// is claimed later by attaching it to a product, brand, category or
// collection; unclaimed keys are purged by the janitor.
func (s *StorageService) StageImage(data []byte, ext string) (*UploadResult, error) {
	key := StagingKey(time.Now(), ext)

	if err := s.put(data, key, mimeTypeForExt(ext)); err != nil {
		return nil, err
	}

	return &UploadResult{
		Key:      key,
		URL:      s.PublicURL(key),
		Size:     int64(len(data)),
		MimeType: mimeTypeForExt(ext),
	}, nil
}

// PromoteStagingImages moves staging keys under folder/slug and returns the
// final keys in the same order. Keys that are not staging keys pass through
// untouched, and a failed move keeps the staging key rather than failing the
// save.
func (s *StorageService) PromoteStagingImages(folder, slug string, keys []string) []string {
	promoted := make([]string, len(keys))

	for i, key := range keys {
		if !IsStagingKey(key) {
			promoted[i] = key
			continue
		}

		finalKey := fmt.Sprintf("%s/%s/%s", folder, slug, filepath.Base(key))
		if err := s.move(key, finalKey); err != nil {
			logrus.WithError(err).WithField("key", key).
				Warn("Failed to promote staging image")
			promoted[i] = key
			continue
		}

		promoted[i] = finalKey
	}

	return promoted
}

// DeleteEntityImages removes everything under the entity's media folder,
// best-effort. Covers promoted product images and variation images alike.
func (s *StorageService) DeleteEntityImages(folder, slug string) {
	prefix := folder + "/" + slug + "/"

	if s.s3Client == nil {
		if err := os.RemoveAll(filepath.Join(s.config.Media.LocalDir, folder, slug)); err != nil {
			logrus.WithError(err).WithField("prefix", prefix).
				Warn("Failed to delete entity images")
		}
		return
	}

	err := s.s3Client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if err := s.DeleteFile(*obj.Key); err != nil {
				logrus.WithError(err).WithField("key", *obj.Key).
					Warn("Failed to delete image")
			}
		}
		return true
	})
	if err != nil {
		logrus.WithError(err).WithField("prefix", prefix).
			Warn("Failed to list entity images")
	}
}

func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client == nil {
		return os.Remove(filepath.Join(s.config.Media.LocalDir, filepath.FromSlash(key)))
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

func (s *StorageService) PublicURL(key string) string {
	if s.s3Client == nil {
		return fmt.Sprintf("http://localhost:%s/uploads/%s", s.config.Server.Port, key)
	}

	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

// StartStagingJanitor purges unclaimed staging uploads on a fixed cadence
// until stop is closed.
func (s *StorageService) StartStagingJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ttl := time.Duration(s.config.Media.StagingTTL) * time.Hour
				s.cleanupStaging(time.Now().Add(-ttl))
			case <-stop:
				return
			}
		}
	}()
}

func (s *StorageService) cleanupStaging(cutoff time.Time) {
	if s.s3Client == nil {
		s.cleanupLocalStaging(cutoff)
		return
	}

	var expired []*s3.ObjectIdentifier

	err := s.s3Client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Prefix: aws.String(stagingPrefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) {
				expired = append(expired, &s3.ObjectIdentifier{Key: obj.Key})
			}
		}
		return true
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to list staging uploads")
		return
	}

	// DeleteObjects caps each batch at 1000 keys
	for start := 0; start < len(expired); start += 1000 {
		end := start + 1000
		if end > len(expired) {
			end = len(expired)
		}

		_, err := s.s3Client.DeleteObjects(&s3.DeleteObjectsInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Delete: &s3.Delete{Objects: expired[start:end], Quiet: aws.Bool(true)},
		})
		if err != nil {
			logrus.WithError(err).Warn("Failed to delete staging uploads")
			return
		}
	}

	if len(expired) > 0 {
		logrus.WithField("count", len(expired)).Info("Purged expired staging uploads")
	}
}

func (s *StorageService) cleanupLocalStaging(cutoff time.Time) {
	root := filepath.Join(s.config.Media.LocalDir, stagingPrefix)

	removed := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to walk staging uploads")
		return
	}

	if removed > 0 {
		logrus.WithField("count", removed).Info("Purged expired staging uploads")
	}
}

// Helper methods

func (s *StorageService) put(data []byte, key, contentType string) error {
	if s.s3Client == nil {
		path := filepath.Join(s.config.Media.LocalDir, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create upload directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return nil
	}

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func (s *StorageService) move(key, finalKey string) error {
	if s.s3Client == nil {
		src := filepath.Join(s.config.Media.LocalDir, filepath.FromSlash(key))
		dst := filepath.Join(s.config.Media.LocalDir, filepath.FromSlash(finalKey))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("failed to create upload directory: %w", err)
		}
		return os.Rename(src, dst)
	}

	_, err := s.s3Client.CopyObject(&s3.CopyObjectInput{
		Bucket:     aws.String(s.config.AWS.S3Bucket),
		CopySource: aws.String(url.PathEscape(s.config.AWS.S3Bucket + "/" + key)),
		Key:        aws.String(finalKey),
		ACL:        aws.String("public-read"),
	})
	if err != nil {
		return fmt.Errorf("failed to copy object: %w", err)
	}

	_, err = s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete staging object: %w", err)
	}

	return nil
}

// StagingKey builds a dated staging key with a random basename.
func StagingKey(now time.Time, ext string) string {
	id := uuid.New()
	return fmt.Sprintf("%s%s/%s_%s%s",
		stagingPrefix, now.Format("20060102"), now.Format("150405"), id.String()[:8], ext)
}

func IsStagingKey(key string) bool {
	return strings.HasPrefix(key, stagingPrefix)
}

func mimeTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
