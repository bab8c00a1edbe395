package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	appcfg "github.com/AliceDavies2025/clincerta/config"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
	"github.com/AliceDavies2025/clincerta/pkg/storage/minio"
	"github.com/AliceDavies2025/clincerta/pkg/storage/s3"
)

// StorageType selects the object storage backend.
type StorageType string

const (
	StorageTypeMinio StorageType = "minio"
	StorageTypeS3    StorageType = "s3"
)

// Storage stores raw uploads and processing result blobs.
type Storage interface {
	// Store stores a blob and returns its key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get retrieves a blob by key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a blob.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes blobs last modified before the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage is the backend factory.
func NewStorage(storageType StorageType, log logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeMinio:
		return minio.NewClient(appcfg.GetMinioConfig(), log)
	case StorageTypeS3:
		return s3.NewClient(appcfg.GetS3Config(), log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
