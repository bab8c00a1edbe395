package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliceDavies2025/clincerta/internal/cache"
	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/internal/service/document"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
	"github.com/AliceDavies2025/clincerta/pkg/queue"
)

type stubProcessor struct {
	lastModified time.Time
	calls        int
}

func (s *stubProcessor) ProcessFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, lastModified time.Time) (*models.ProcessingTask, error) {
	s.lastModified = lastModified
	s.calls++
	return &models.ProcessingTask{
		ID:        "task-1",
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		Metadata:  map[string]string{"filename": header.Filename},
	}, nil
}

func (s *stubProcessor) ProcessBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.ProcessingTask, error) {
	return nil, nil
}
func (s *stubProcessor) HandleDocument(ctx context.Context, task *queue.Task) error { return nil }
func (s *stubProcessor) GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	return &models.ProcessingTask{ID: taskID}, nil
}
func (s *stubProcessor) GetProcessedDocument(ctx context.Context, taskID string) (*document.ProcessedDocument, error) {
	return &document.ProcessedDocument{TaskID: taskID}, nil
}
func (s *stubProcessor) CancelTask(ctx context.Context, taskID string) error { return nil }
func (s *stubProcessor) CleanupTasks(ctx context.Context) error              { return nil }
func (s *stubProcessor) CacheStats(ctx context.Context) cache.Stats          { return cache.Stats{} }
func (s *stubProcessor) ClearCache(ctx context.Context)                      {}

func newDocumentRouter(t *testing.T) (*gin.Engine, *stubProcessor) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	stub := &stubProcessor{}
	h := NewDocumentHandler(stub, logger.NewTestLogger())
	r := gin.New()
	r.POST("/documents/process", h.ProcessDocument)
	return r, stub
}

func postUpload(t *testing.T, r *gin.Engine, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "note.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Plan: continue sessions."))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/process", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessDocumentForwardsLastModified(t *testing.T) {
	r, stub := newDocumentRouter(t)

	w := postUpload(t, r, map[string]string{"lastModified": "1700000000000"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, stub.calls)
	assert.Equal(t, time.UnixMilli(1700000000000), stub.lastModified)
}

func TestProcessDocumentWithoutLastModified(t *testing.T) {
	r, stub := newDocumentRouter(t)

	w := postUpload(t, r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, stub.calls)
	assert.True(t, stub.lastModified.IsZero())
}

func TestProcessDocumentRejectsBadLastModified(t *testing.T) {
	r, stub := newDocumentRouter(t)

	w := postUpload(t, r, map[string]string{"lastModified": "not-a-number"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, stub.calls)
}
