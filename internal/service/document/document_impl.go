package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	appcfg "github.com/AliceDavies2025/clincerta/config"
	"github.com/AliceDavies2025/clincerta/internal/analysis"
	"github.com/AliceDavies2025/clincerta/internal/cache"
	"github.com/AliceDavies2025/clincerta/internal/extract"
	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/internal/ocr"
	"github.com/AliceDavies2025/clincerta/internal/process"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
	"github.com/AliceDavies2025/clincerta/pkg/queue"
	"github.com/AliceDavies2025/clincerta/pkg/storage"
)

// ProcessedDocument is the stored outcome of one task: extraction plus
// the four analysis reports.
type ProcessedDocument struct {
	TaskID       string                       `json:"taskId"`
	FileName     string                       `json:"fileName"`
	FileType     string                       `json:"fileType"`
	FileSize     int64                        `json:"fileSize"`
	ProcessedAt  time.Time                    `json:"processedAt"`
	FromCache    bool                         `json:"fromCache"`
	Extraction   *models.ExtractionResult     `json:"extraction"`
	Clonability  *analysis.ClonabilityReport  `json:"clonability"`
	Integrity    *analysis.IntegrityReport    `json:"integrity"`
	GoldenThread *analysis.GoldenThreadReport `json:"goldenThread"`
	Audit        *analysis.AuditReport        `json:"audit"`
}

type DocumentService struct {
	processor *process.Processor
	cache     *cache.DocumentCache
	queue     queue.Queue
	storage   storage.Storage
	logger    logger.Logger
	config    *ServiceConfig
}

type ServiceConfig struct {
	MaxFileSize     int64
	AllowedTypes    []string
	QueuePriority   int
	RetentionPeriod time.Duration
	GoldenThread    analysis.GoldenThreadPolicy
}

func defaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxFileSize:     50 * 1024 * 1024, // 50MB
		AllowedTypes:    []string{".pdf", ".doc", ".docx", ".txt"},
		RetentionPeriod: 24 * time.Hour,
		GoldenThread:    analysis.DefaultGoldenThreadPolicy(),
	}
}

func NewService(
	processor *process.Processor,
	docCache *cache.DocumentCache,
	q queue.Queue,
	store storage.Storage,
	log logger.Logger,
	cfg *ServiceConfig,
) *DocumentService {
	if cfg == nil {
		cfg = defaultServiceConfig()
	}
	return &DocumentService{
		processor: processor,
		cache:     docCache,
		queue:     q,
		storage:   store,
		logger:    log,
		config:    cfg,
	}
}

// GetService wires the full pipeline from ambient configuration: object
// storage, queue, extraction, scan detection, OCR engine and cache.
func GetService(ctx context.Context, policy *appcfg.Policy, log logger.Logger) (*DocumentService, error) {
	if policy == nil {
		policy = appcfg.DefaultPolicy()
	}

	store, err := storage.NewStorage(storage.StorageType(appcfg.GetStorageType()), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	q, err := queue.GetQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	engine, err := buildOCREngine(ctx, policy, log)
	if err != nil {
		// OCR is an enhancement; a broken engine degrades to native
		// extraction only.
		log.Warn("OCR engine unavailable, continuing without OCR", logger.Error(err))
		engine = nil
	}

	threshold := policy.ScanDetection.CharsPerPage
	if policy.ScanDetection.Policy == "total" {
		threshold = policy.ScanDetection.MinTotalChars
	}
	detector := extract.NewScanDetector(extract.ScanPolicy(policy.ScanDetection.Policy), threshold)

	proc := process.NewProcessor(
		extract.NewExtractor(log),
		detector,
		engine,
		process.Config{OCRTimeout: time.Duration(policy.OCR.TimeoutSeconds) * time.Second},
		log,
	)

	rc := appcfg.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{Addr: rc.Addr, DB: rc.DB})
	docCache := cache.NewDocumentCache(cache.NewRedisStore(redisClient), cache.DefaultCacheConfig(), log)

	cfg := defaultServiceConfig()
	cfg.GoldenThread = analysis.GoldenThreadPolicy{
		MinScore:    policy.GoldenThread.MinScore,
		MinSections: policy.GoldenThread.MinSections,
	}

	return NewService(proc, docCache, q, store, log, cfg), nil
}

func buildOCREngine(ctx context.Context, policy *appcfg.Policy, log logger.Logger) (ocr.Engine, error) {
	switch policy.OCR.Engine {
	case "", "none":
		return nil, nil
	case "tesseract":
		return ocr.NewTesseractEngine(policy.OCR.DPI, log)
	case "textract":
		tc := appcfg.GetTextractConfig()
		return ocr.NewTextractEngine(ctx, &ocr.TextractConfig{
			Region:    tc.Region,
			AccessKey: tc.AccessKey,
			SecretKey: tc.SecretKey,
		}, policy.OCR.DPI, log)
	default:
		return nil, fmt.Errorf("unknown ocr engine: %s", policy.OCR.Engine)
	}
}

// StartBackground launches the cache expiry sweep.
func (s *DocumentService) StartBackground(ctx context.Context) {
	s.cache.Start(ctx)
}

// StopBackground stops the cache sweep.
func (s *DocumentService) StopBackground() {
	s.cache.Stop()
}

// ProcessFile validates and stores an upload, then queues it for
// asynchronous processing. lastModified is the client's file timestamp;
// it feeds the cache fingerprint, so re-uploads of an unchanged file
// resolve to the same cache entry. A zero value falls back to the
// receipt time, which never matches a prior upload.
func (s *DocumentService) ProcessFile(
	ctx context.Context,
	file multipart.File,
	header *multipart.FileHeader,
	lastModified time.Time,
) (*models.ProcessingTask, error) {
	s.logger.Info("Starting file processing",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	if err := s.validateFile(header); err != nil {
		s.logger.Error("File validation failed",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, err
	}

	taskID := uuid.New().String()
	if lastModified.IsZero() {
		lastModified = time.Now()
	}

	task := &models.ProcessingTask{
		ID:        taskID,
		Status:    models.StatusPending,
		Type:      queue.TaskTypeDocumentProcess,
		Priority:  s.config.QueuePriority,
		Progress:  0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Metadata: map[string]string{
			"filename":     header.Filename,
			"size":         fmt.Sprintf("%d", header.Size),
			"type":         filepath.Ext(header.Filename),
			"lastModified": fmt.Sprintf("%d", lastModified.UnixMilli()),
		},
	}

	// Keyed by task so two queued uploads sharing a filename cannot
	// overwrite each other before the worker reads them.
	fileID, err := s.storage.Store(ctx, file, fmt.Sprintf("upload:%s", taskID))
	if err != nil {
		s.logger.Error("Failed to store file",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	queueTask := &queue.Task{
		ID:       taskID,
		Type:     task.Type,
		Priority: task.Priority,
		Payload: map[string]any{
			"fileId": fileID,
		},
		Metadata:  task.Metadata,
		CreatedAt: task.CreatedAt,
	}

	if err := s.queue.Enqueue(ctx, queueTask); err != nil {
		s.logger.Error("Failed to enqueue task",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	if err := s.queue.SaveFinalStatus(ctx, &queue.TaskStatus{
		TaskID:    taskID,
		Status:    "pending",
		StartedAt: time.Now(),
	}); err != nil {
		s.logger.Error("Failed to save initial status",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
	}

	s.logger.Info("File processing task created",
		logger.String("taskId", taskID),
		logger.String("filename", header.Filename),
	)

	return task, nil
}

// ProcessBatch queues several uploads concurrently.
func (s *DocumentService) ProcessBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.ProcessingTask, error) {
	tasks := make([]*models.ProcessingTask, 0, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, header := range files {
		header := header
		g.Go(func() error {
			file, err := header.Open()
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", header.Filename, err)
			}
			defer file.Close()

			task, err := s.ProcessFile(ctx, file, header, time.Time{})
			if err != nil {
				return fmt.Errorf("failed to process file %s: %w", header.Filename, err)
			}

			mu.Lock()
			tasks = append(tasks, task)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return tasks, err
	}
	return tasks, nil
}

// HandleDocument runs extraction (or a cache hit) and the analysis
// passes for one queued task, then stores the result bundle.
func (s *DocumentService) HandleDocument(ctx context.Context, task *queue.Task) error {
	if task == nil || task.Payload == nil || task.Metadata == nil {
		return fmt.Errorf("invalid task: missing required data")
	}

	s.logger.Info("Processing document",
		logger.String("taskId", task.ID),
		logger.String("filename", task.Metadata["filename"]),
	)

	fileID, ok := task.Payload["fileId"].(string)
	if !ok || fileID == "" {
		return fmt.Errorf("invalid task: missing fileId")
	}

	reader, err := s.storage.Get(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	doc := &models.SourceDocument{
		FileName: task.Metadata["filename"],
		Content:  content,
		Size:     int64(len(content)),
	}
	if size, err := strconv.ParseInt(task.Metadata["size"], 10, 64); err == nil {
		doc.Size = size
	}
	if ms, err := strconv.ParseInt(task.Metadata["lastModified"], 10, 64); err == nil {
		doc.LastModified = time.UnixMilli(ms)
	}

	result, fromCache := s.extractText(ctx, task, doc)
	if result == nil {
		return fmt.Errorf("failed to extract text from %s", doc.FileName)
	}

	processed := &ProcessedDocument{
		TaskID:      task.ID,
		FileName:    doc.FileName,
		FileType:    task.Metadata["type"],
		FileSize:    doc.Size,
		ProcessedAt: time.Now(),
		FromCache:   fromCache,
		Extraction:  result,
	}
	s.analyze(ctx, processed, result.Text)

	resultData, err := json.Marshal(processed)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := s.storage.Store(ctx, bytes.NewReader(resultData), fmt.Sprintf("result:%s", task.ID)); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}

	s.logger.Info("Document processing completed",
		logger.String("taskId", task.ID),
		logger.Bool("fromCache", fromCache),
		logger.Bool("ocrApplied", result.OCRApplied),
	)

	if err := s.queue.SaveFinalStatus(ctx, &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     "completed",
		Progress:   1.0,
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now(),
	}); err != nil {
		s.logger.Error("Failed to save final status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}

	return nil
}

// extractText serves the text from the cache when possible, otherwise
// runs the extraction pipeline and caches the outcome. A nil result
// means extraction failed outright.
func (s *DocumentService) extractText(ctx context.Context, task *queue.Task, doc *models.SourceDocument) (*models.ExtractionResult, bool) {
	if entry := s.cache.CachedText(ctx, doc); entry != nil {
		s.logger.Info("Cache hit, skipping extraction",
			logger.String("taskId", task.ID),
			logger.String("filename", doc.FileName),
		)
		return &models.ExtractionResult{
			Text:       entry.Text,
			IsScanned:  entry.IsScanned,
			OCRApplied: entry.OCRApplied,
		}, true
	}

	onProgress := func(percent int, stage string) {
		status := &queue.TaskStatus{
			TaskID:    task.ID,
			Status:    "running",
			Progress:  float64(percent) / 100,
			Stage:     stage,
			StartedAt: task.CreatedAt,
		}
		if err := s.queue.SaveFinalStatus(ctx, status); err != nil {
			s.logger.Warn("Failed to report progress", logger.Error(err))
		}
	}

	result, err := s.processor.Process(ctx, doc, onProgress)
	if err != nil {
		s.logger.Error("Extraction failed",
			logger.String("taskId", task.ID),
			logger.String("filename", doc.FileName),
			logger.Error(err),
		)
		return nil, false
	}

	if strings.TrimSpace(result.Text) != "" {
		s.cache.Put(ctx, doc, result.Text, result.IsScanned, result.OCRApplied)
	}
	return result, false
}

// analyze runs the four heuristic passes concurrently. They are pure
// functions of the text, so the fan-out has no shared state beyond the
// report slots.
func (s *DocumentService) analyze(ctx context.Context, processed *ProcessedDocument, text string) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		processed.Clonability = analysis.AnalyzeClonability(text)
		return nil
	})
	g.Go(func() error {
		processed.Integrity = analysis.AnalyzeIntegrity(text)
		return nil
	})
	g.Go(func() error {
		processed.GoldenThread = analysis.AnalyzeGoldenThread(text, s.config.GoldenThread)
		return nil
	})
	g.Go(func() error {
		processed.Audit = analysis.AnalyzeAudit(text, processed.TaskID)
		return nil
	})
	g.Wait()
}

func (s *DocumentService) GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	var taskStatus models.ProcessingStatus
	switch status.Status {
	case "pending":
		taskStatus = models.StatusPending
	case "running", "active":
		taskStatus = models.StatusRunning
	case "completed":
		taskStatus = models.StatusCompleted
	case "failed":
		taskStatus = models.StatusFailed
	case "cancelled":
		taskStatus = models.StatusCancelled
	default:
		taskStatus = models.StatusPending
	}

	return &models.ProcessingTask{
		ID:        status.TaskID,
		Status:    taskStatus,
		Type:      queue.TaskTypeDocumentProcess,
		Progress:  status.Progress,
		Error:     status.Error,
		Metadata:  map[string]string{"stage": status.Stage},
		CreatedAt: status.StartedAt,
		UpdatedAt: status.FinishedAt,
	}, nil
}

func (s *DocumentService) GetProcessedDocument(ctx context.Context, taskID string) (*ProcessedDocument, error) {
	status, err := s.GetProcessingStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if status.Status != models.StatusCompleted {
		return nil, fmt.Errorf("task is not completed: %s", status.Status)
	}

	reader, err := s.storage.Get(ctx, fmt.Sprintf("result:%s", taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result ProcessedDocument
	if err := json.NewDecoder(reader).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}

func (s *DocumentService) CancelTask(ctx context.Context, taskID string) error {
	if err := s.queue.CancelTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}
	s.logger.Info("Task cancelled", logger.String("taskId", taskID))
	return nil
}

// CleanupTasks removes stored files and results past the retention
// period.
func (s *DocumentService) CleanupTasks(ctx context.Context) error {
	threshold := time.Now().Add(-s.config.RetentionPeriod)
	if err := s.storage.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to cleanup storage: %w", err)
	}
	s.logger.Info("Completed tasks cleanup", logger.Time("threshold", threshold))
	return nil
}

// GoldenThreadPolicy exposes the configured compliance thresholds so
// the synchronous analysis endpoints match the pipeline's behavior.
func (s *DocumentService) GoldenThreadPolicy() analysis.GoldenThreadPolicy {
	return s.config.GoldenThread
}

func (s *DocumentService) CacheStats(ctx context.Context) cache.Stats {
	return s.cache.Stats(ctx)
}

func (s *DocumentService) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
}

func (s *DocumentService) validateFile(header *multipart.FileHeader) error {
	if header.Size > s.config.MaxFileSize {
		return fmt.Errorf("file size exceeds maximum limit of %d bytes", s.config.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, t := range s.config.AllowedTypes {
		if t == ext {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type: %s", ext)
}
