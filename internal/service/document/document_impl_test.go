package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliceDavies2025/clincerta/internal/cache"
	"github.com/AliceDavies2025/clincerta/internal/extract"
	"github.com/AliceDavies2025/clincerta/internal/process"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
	"github.com/AliceDavies2025/clincerta/pkg/queue"
)

type fakeStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte

	cleanedBefore time.Time
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}}
}

func (s *fakeStorage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return key, nil
}

func (s *fakeStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *fakeStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	s.cleanedBefore = threshold
	return nil
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []*queue.Task
	statuses map[string]*queue.TaskStatus
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{statuses: map[string]*queue.TaskStatus{}}
}

func (q *fakeQueue) Enqueue(ctx context.Context, task *queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, task)
	return nil
}

func (q *fakeQueue) GetTaskStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	status, ok := q.statuses[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	return status, nil
}

func (q *fakeQueue) CancelTask(ctx context.Context, taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses[taskID] = &queue.TaskStatus{TaskID: taskID, Status: "cancelled"}
	return nil
}

func (q *fakeQueue) SaveFinalStatus(ctx context.Context, status *queue.TaskStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses[status.TaskID] = status
	return nil
}

func newTestService(t *testing.T) (*DocumentService, *fakeStorage, *fakeQueue) {
	t.Helper()
	log := logger.NewTestLogger()
	proc := process.NewProcessor(
		extract.NewExtractor(log),
		extract.NewScanDetector(extract.ScanPolicyPerPage, extract.DefaultCharsPerPage),
		nil,
		process.DefaultConfig(),
		log,
	)
	docCache := cache.NewDocumentCache(cache.NewMemoryStore(), cache.DefaultCacheConfig(), log)
	fs := newFakeStorage()
	fq := newFakeQueue()
	return NewService(proc, docCache, fq, fs, log, nil), fs, fq
}

func queueTask(id, fileID, filename string, size int64) *queue.Task {
	return &queue.Task{
		ID:   id,
		Type: queue.TaskTypeDocumentProcess,
		Payload: map[string]any{
			"fileId": fileID,
		},
		Metadata: map[string]string{
			"filename":     filename,
			"size":         fmt.Sprintf("%d", size),
			"type":         ".txt",
			"lastModified": fmt.Sprintf("%d", time.Now().UnixMilli()),
		},
		CreatedAt: time.Now(),
	}
}

func TestHandleDocumentProducesFullResult(t *testing.T) {
	ctx := context.Background()
	svc, fs, fq := newTestService(t)

	content := []byte(strings.Repeat("Subjective: client reports progress. Plan: continue sessions. ", 5))
	_, err := fs.Store(ctx, bytes.NewReader(content), "file-1")
	require.NoError(t, err)

	task := queueTask("task-1", "file-1", "note.txt", int64(len(content)))
	require.NoError(t, svc.HandleDocument(ctx, task))

	reader, err := fs.Get(ctx, "result:task-1")
	require.NoError(t, err)
	var result ProcessedDocument
	require.NoError(t, json.NewDecoder(reader).Decode(&result))

	assert.Equal(t, "task-1", result.TaskID)
	assert.Equal(t, "note.txt", result.FileName)
	assert.False(t, result.FromCache)
	require.NotNil(t, result.Extraction)
	assert.NotEmpty(t, result.Extraction.Text)
	assert.NotNil(t, result.Clonability)
	assert.NotNil(t, result.Integrity)
	assert.NotNil(t, result.GoldenThread)
	assert.NotNil(t, result.Audit)

	status := fq.statuses["task-1"]
	require.NotNil(t, status)
	assert.Equal(t, "completed", status.Status)
}

func TestHandleDocumentSecondRunHitsCache(t *testing.T) {
	ctx := context.Background()
	svc, fs, _ := newTestService(t)

	content := []byte(strings.Repeat("The session covered coping strategies in detail. ", 5))
	_, err := fs.Store(ctx, bytes.NewReader(content), "file-1")
	require.NoError(t, err)

	first := queueTask("task-1", "file-1", "note.txt", int64(len(content)))
	require.NoError(t, svc.HandleDocument(ctx, first))

	// Same file identity, new task.
	second := queueTask("task-2", "file-1", "note.txt", int64(len(content)))
	second.Metadata["lastModified"] = first.Metadata["lastModified"]
	require.NoError(t, svc.HandleDocument(ctx, second))

	reader, err := fs.Get(ctx, "result:task-2")
	require.NoError(t, err)
	var result ProcessedDocument
	require.NoError(t, json.NewDecoder(reader).Decode(&result))
	assert.True(t, result.FromCache)
	assert.NotEmpty(t, result.Extraction.Text)
}

func TestHandleDocumentRejectsInvalidTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	assert.Error(t, svc.HandleDocument(ctx, nil))
	assert.Error(t, svc.HandleDocument(ctx, &queue.Task{ID: "x"}))
	assert.Error(t, svc.HandleDocument(ctx, queueTask("task-1", "", "note.txt", 1)))
}

func TestHandleDocumentMissingFile(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.HandleDocument(context.Background(), queueTask("task-1", "ghost", "note.txt", 1))
	assert.Error(t, err)
}

type readerFile struct {
	*bytes.Reader
}

func (readerFile) Close() error { return nil }

func newMultipartFile(content []byte) multipart.File {
	return readerFile{bytes.NewReader(content)}
}

func TestProcessFileValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ProcessFile(ctx, newMultipartFile(nil), &multipart.FileHeader{
		Filename: "huge.pdf",
		Size:     200 * 1024 * 1024,
	}, time.Time{})
	assert.ErrorContains(t, err, "file size exceeds")

	_, err = svc.ProcessFile(ctx, newMultipartFile(nil), &multipart.FileHeader{
		Filename: "image.png",
		Size:     10,
	}, time.Time{})
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestProcessFileEnqueuesTask(t *testing.T) {
	svc, fs, fq := newTestService(t)
	ctx := context.Background()

	content := []byte("hello")
	task, err := svc.ProcessFile(ctx, newMultipartFile(content), &multipart.FileHeader{
		Filename: "note.txt",
		Size:     int64(len(content)),
	}, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "note.txt", task.Metadata["filename"])

	require.Len(t, fq.enqueued, 1)
	assert.Equal(t, task.ID, fq.enqueued[0].ID)

	fileID, _ := fq.enqueued[0].Payload["fileId"].(string)
	require.NotEmpty(t, fileID)
	stored, err := fs.Get(ctx, fileID)
	require.NoError(t, err)
	data, _ := io.ReadAll(stored)
	assert.Equal(t, content, data)

	status, err := svc.GetProcessingStatus(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", string(status.Status))
}

func TestReuploadWithClientTimestampHitsCache(t *testing.T) {
	ctx := context.Background()
	svc, fs, fq := newTestService(t)

	content := []byte(strings.Repeat("Assessment: client engaged well with the exercises. ", 5))
	header := &multipart.FileHeader{Filename: "note.txt", Size: int64(len(content))}
	modified := time.UnixMilli(1700000000000)

	_, err := svc.ProcessFile(ctx, newMultipartFile(content), header, modified)
	require.NoError(t, err)
	_, err = svc.ProcessFile(ctx, newMultipartFile(content), header, modified)
	require.NoError(t, err)

	require.Len(t, fq.enqueued, 2)
	require.NoError(t, svc.HandleDocument(ctx, fq.enqueued[0]))
	require.NoError(t, svc.HandleDocument(ctx, fq.enqueued[1]))

	reader, err := fs.Get(ctx, fmt.Sprintf("result:%s", fq.enqueued[1].ID))
	require.NoError(t, err)
	var result ProcessedDocument
	require.NoError(t, json.NewDecoder(reader).Decode(&result))
	assert.True(t, result.FromCache)
	assert.NotEmpty(t, result.Extraction.Text)
}

func TestQueuedUploadsWithSameNameKeepOwnBytes(t *testing.T) {
	ctx := context.Background()
	svc, fs, fq := newTestService(t)

	first := []byte("Plan: continue weekly sessions with the client.")
	second := []byte("Subjective: client reports a marked improvement in sleep this week.")

	_, err := svc.ProcessFile(ctx, newMultipartFile(first), &multipart.FileHeader{
		Filename: "note.txt",
		Size:     int64(len(first)),
	}, time.Time{})
	require.NoError(t, err)
	_, err = svc.ProcessFile(ctx, newMultipartFile(second), &multipart.FileHeader{
		Filename: "note.txt",
		Size:     int64(len(second)),
	}, time.Time{})
	require.NoError(t, err)

	require.Len(t, fq.enqueued, 2)
	for i, want := range [][]byte{first, second} {
		require.NoError(t, svc.HandleDocument(ctx, fq.enqueued[i]))
		reader, err := fs.Get(ctx, fmt.Sprintf("result:%s", fq.enqueued[i].ID))
		require.NoError(t, err)
		var result ProcessedDocument
		require.NoError(t, json.NewDecoder(reader).Decode(&result))
		assert.Equal(t, string(want), result.Extraction.Text)
	}
}

func TestGetProcessedDocumentRequiresCompletion(t *testing.T) {
	svc, _, fq := newTestService(t)
	ctx := context.Background()

	fq.statuses["task-1"] = &queue.TaskStatus{TaskID: "task-1", Status: "running"}
	_, err := svc.GetProcessedDocument(ctx, "task-1")
	assert.ErrorContains(t, err, "not completed")
}

func TestCleanupTasks(t *testing.T) {
	svc, fs, _ := newTestService(t)
	require.NoError(t, svc.CleanupTasks(context.Background()))
	assert.False(t, fs.cleanedBefore.IsZero())
}
