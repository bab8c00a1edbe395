package document

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/AliceDavies2025/clincerta/internal/cache"
	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/pkg/queue"
)

// DocumentProcessor is the service surface the API handlers and the
// worker share.
type DocumentProcessor interface {
	ProcessFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, lastModified time.Time) (*models.ProcessingTask, error)
	ProcessBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.ProcessingTask, error)
	HandleDocument(ctx context.Context, task *queue.Task) error
	GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error)
	GetProcessedDocument(ctx context.Context, taskID string) (*ProcessedDocument, error)
	CancelTask(ctx context.Context, taskID string) error
	CleanupTasks(ctx context.Context) error
	CacheStats(ctx context.Context) cache.Stats
	ClearCache(ctx context.Context)
}
