// internal/services/storage_service_test.go
package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/storefront-backend/internal/config"
)

// StorageServiceTestSuite exercises the local-disk mode used when AWS
// credentials are absent.
type StorageServiceTestSuite struct {
	suite.Suite
	dir     string
	service *StorageService
}

func (s *StorageServiceTestSuite) SetupTest() {
	s.dir = s.T().TempDir()

	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Media.LocalDir = s.dir

	service, err := NewStorageService(cfg)
	s.Require().NoError(err)
	s.service = service
}

func (s *StorageServiceTestSuite) TestStageImage() {
	data := []byte("fake-jpeg-bytes")

	result, err := s.service.StageImage(data, ".jpg")
	s.Require().NoError(err)

	s.True(IsStagingKey(result.Key))
	s.Equal("http://localhost:8080/uploads/"+result.Key, result.URL)
	s.Equal(int64(len(data)), result.Size)
	s.Equal("image/jpeg", result.MimeType)

	written, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(result.Key)))
	s.Require().NoError(err)
	s.Equal(data, written)
}

func (s *StorageServiceTestSuite) TestPromoteStagingImages() {
	result, err := s.service.StageImage([]byte("payload"), ".jpg")
	s.Require().NoError(err)

	promoted := s.service.PromoteStagingImages("products", "aurora-lamp", []string{result.Key})
	s.Require().Len(promoted, 1)

	expected := "products/aurora-lamp/" + filepath.Base(result.Key)
	s.Equal(expected, promoted[0])

	_, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(result.Key)))
	s.True(os.IsNotExist(err), "staging file should be gone after promotion")

	moved, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(promoted[0])))
	s.Require().NoError(err)
	s.Equal([]byte("payload"), moved)
}

func (s *StorageServiceTestSuite) TestPromotePassesThroughFinalKeys() {
	key := "products/aurora-lamp/already-final.jpg"

	promoted := s.service.PromoteStagingImages("products", "aurora-lamp", []string{key})

	s.Equal([]string{key}, promoted)
}

func (s *StorageServiceTestSuite) TestPromoteKeepsStagingKeyWhenMoveFails() {
	// Key was never staged, so the rename fails and the save must not lose it.
	key := "staging/20260101/000000_deadbeef.jpg"

	promoted := s.service.PromoteStagingImages("products", "aurora-lamp", []string{key})

	s.Equal([]string{key}, promoted)
}

func (s *StorageServiceTestSuite) TestDeleteFile() {
	result, err := s.service.StageImage([]byte("payload"), ".png")
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteFile(result.Key))

	_, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(result.Key)))
	s.True(os.IsNotExist(err))

	s.Error(s.service.DeleteFile(result.Key), "deleting a missing file should error")
}

func (s *StorageServiceTestSuite) TestDeleteEntityImages() {
	result, err := s.service.StageImage([]byte("payload"), ".jpg")
	s.Require().NoError(err)

	promoted := s.service.PromoteStagingImages("products", "aurora-lamp", []string{result.Key})
	s.Require().Len(promoted, 1)

	s.service.DeleteEntityImages("products", "aurora-lamp")

	_, err = os.Stat(filepath.Join(s.dir, "products", "aurora-lamp"))
	s.True(os.IsNotExist(err), "entity folder should be gone")

	// Entities that never had media are a no-op.
	s.service.DeleteEntityImages("products", "never-existed")
}

func (s *StorageServiceTestSuite) TestCleanupLocalStaging() {
	expired, err := s.service.StageImage([]byte("old"), ".jpg")
	s.Require().NoError(err)
	fresh, err := s.service.StageImage([]byte("new"), ".jpg")
	s.Require().NoError(err)

	expiredPath := filepath.Join(s.dir, filepath.FromSlash(expired.Key))
	stale := time.Now().Add(-2 * time.Hour)
	s.Require().NoError(os.Chtimes(expiredPath, stale, stale))

	s.service.cleanupStaging(time.Now().Add(-time.Hour))

	_, err = os.Stat(expiredPath)
	s.True(os.IsNotExist(err), "expired staging file should be purged")

	_, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(fresh.Key)))
	s.NoError(err, "fresh staging file should survive")
}

func TestStorageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StorageServiceTestSuite))
}

func TestStagingKey(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)

	key := StagingKey(now, ".png")
	assert.Regexp(t, `^staging/20260825/143005_[0-9a-f]{8}\.png$`, key)

	other := StagingKey(now, ".png")
	assert.NotEqual(t, key, other)
}

func TestIsStagingKey(t *testing.T) {
	assert.True(t, IsStagingKey("staging/20260825/143005_ab12cd34.jpg"))
	assert.False(t, IsStagingKey("products/aurora-lamp/ab12cd34.jpg"))
	assert.False(t, IsStagingKey(""))
}

func TestMimeTypeForExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", mimeTypeForExt(".jpg"))
	assert.Equal(t, "image/jpeg", mimeTypeForExt(".JPEG"))
	assert.Equal(t, "image/png", mimeTypeForExt(".png"))
	assert.Equal(t, "image/gif", mimeTypeForExt(".gif"))
	assert.Equal(t, "application/octet-stream", mimeTypeForExt(".webp"))
}

func TestPublicURLS3(t *testing.T) {
	cfg := &config.Config{}
	cfg.AWS.AccessKeyID = "test-key"
	cfg.AWS.SecretAccessKey = "test-secret"
	cfg.AWS.Region = "us-east-1"
	cfg.AWS.S3Bucket = "lumenmart-media"

	service, err := NewStorageService(cfg)
	require.NoError(t, err)
	assert.Equal(t,
		"https://lumenmart-media.s3.us-east-1.amazonaws.com/products/x.jpg",
		service.PublicURL("products/x.jpg"))

	cfg.AWS.CloudFrontURL = "https://cdn.lumenmart.com"
	assert.Equal(t,
		"https://cdn.lumenmart.com/products/x.jpg",
		service.PublicURL("products/x.jpg"))
}
