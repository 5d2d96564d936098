package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shot2code/shot2code/internal/pkg/env"
)

// LocalStore saves screenshots on the local filesystem. It is used when S3
// storage is not enabled.
type LocalStore struct {
	baseDir string
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		baseDir: env.GetEnv("LOCAL_STORAGE_PATH", "./uploads"),
	}
}

func (s *LocalStore) UploadScreenshot(_ context.Context, objectKey string, data []byte, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(objectKey))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write screenshot: %w", err)
	}
	return &UploadResult{
		ObjectKey:   objectKey,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *LocalStore) DownloadScreenshot(_ context.Context, objectKey string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(objectKey)))
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	return data, nil
}
