package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leadpilot/config"
	"leadpilot/models"
)

// StorageClient talks to the Supabase storage REST API for attachment files
type StorageClient struct {
	cfg    config.StorageConfig
	client *http.Client
}

func NewStorageClient(cfg config.StorageConfig) *StorageClient {
	return &StorageClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *StorageClient) objectURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.cfg.URL, s.cfg.Bucket, path)
}

func (s *StorageClient) publicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.cfg.URL, s.cfg.Bucket, path)
}

// Upload stores a file in the attachment bucket under a timestamped path and
// returns its metadata including the public URL
func (s *StorageClient) Upload(fileBytes []byte, fileName, contentType string) (models.AttachmentMeta, error) {
	path := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), fileName)

	req, err := http.NewRequest(http.MethodPost, s.objectURL(path), bytes.NewReader(fileBytes))
	if err != nil {
		return models.AttachmentMeta{}, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return models.AttachmentMeta{}, fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.AttachmentMeta{}, fmt.Errorf("storage upload returned status %d: %s", resp.StatusCode, string(body))
	}

	logrus.WithFields(logrus.Fields{
		"file": fileName,
		"size": len(fileBytes),
		"path": path,
	}).Info("File uploaded to storage")

	return models.AttachmentMeta{
		FileName:    fileName,
		FileURL:     s.publicURL(path),
		MimeType:    contentType,
		Size:        len(fileBytes),
		StoragePath: path,
	}, nil
}

// Download fetches a file by its public URL through the storage API, falling
// back to a plain HTTP GET when the API download fails
func (s *StorageClient) Download(fileURL string) ([]byte, error) {
	path, err := s.pathFromURL(fileURL)
	if err == nil {
		data, apiErr := s.downloadObject(path)
		if apiErr == nil {
			return data, nil
		}
		logrus.WithError(apiErr).Warn("Storage API download failed, trying HTTP fallback")
	}

	resp, httpErr := s.client.Get(fileURL)
	if httpErr != nil {
		return nil, fmt.Errorf("failed to download file: %w", httpErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *StorageClient) downloadObject(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, s.objectURL(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// pathFromURL extracts the bucket-relative path from a public storage URL
// (.../storage/v1/object/public/{bucket}/{path})
func (s *StorageClient) pathFromURL(fileURL string) (string, error) {
	parts := strings.SplitN(fileURL, "/object/public/", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("not a storage public URL")
	}
	bucketAndPath := strings.SplitN(parts[1], "/", 2)
	if len(bucketAndPath) != 2 {
		return "", fmt.Errorf("invalid storage URL format")
	}
	return bucketAndPath[1], nil
}

// Delete removes a file from the bucket; failures are logged, not fatal
func (s *StorageClient) Delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, s.objectURL(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		logrus.WithError(err).Warnf("Failed to delete file %s", path)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.Warnf("Storage delete for %s returned status %d", path, resp.StatusCode)
		return fmt.Errorf("storage delete returned status %d", resp.StatusCode)
	}
	return nil
}
