package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AliceDavies2025/clincerta/internal/service/document"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

type DocumentHandler struct {
	service document.DocumentProcessor
	logger  logger.Logger
}

type ProcessResponse struct {
	TaskID    string `json:"taskId"`
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"fileSize"`
	FileType  string `json:"fileType"`
	CreatedAt string `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewDocumentHandler(service document.DocumentProcessor, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  log,
	}
}

// ProcessDocument accepts one uploaded file and queues it. The optional
// lastModified form field (milliseconds since epoch, as browsers report
// it) identifies the file for the extraction cache; without it every
// upload is treated as new.
func (h *DocumentHandler) ProcessDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	var lastModified time.Time
	if raw := c.PostForm("lastModified"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.handleError(c, http.StatusBadRequest, "Invalid lastModified value", err)
			return
		}
		lastModified = time.UnixMilli(ms)
	}

	task, err := h.service.ProcessFile(c.Request.Context(), file, header, lastModified)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to process file", err)
		return
	}

	c.JSON(http.StatusOK, ProcessResponse{
		TaskID:    task.ID,
		Status:    string(task.Status),
		Filename:  header.Filename,
		FileSize:  header.Size,
		FileType:  filepath.Ext(header.Filename),
		CreatedAt: task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// ProcessBatch accepts a multipart form of files and queues them all.
func (h *DocumentHandler) ProcessBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.handleError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	tasks, err := h.service.ProcessBatch(c.Request.Context(), files)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to process files", err)
		return
	}

	responses := make([]ProcessResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = ProcessResponse{
			TaskID:    task.ID,
			Status:    string(task.Status),
			Filename:  task.Metadata["filename"],
			FileType:  task.Metadata["type"],
			CreatedAt: task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Processing %d documents", len(files)),
		"tasks":   responses,
	})
}

// GetStatus returns the queue status for one task.
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	task, err := h.service.GetProcessingStatus(c.Request.Context(), taskID)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to get status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskId":    task.ID,
		"status":    string(task.Status),
		"progress":  task.Progress,
		"error":     task.Error,
		"metadata":  task.Metadata,
		"createdAt": task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"updatedAt": task.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// DownloadResult streams the stored result bundle as a JSON download.
func (h *DocumentHandler) DownloadResult(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	result, err := h.service.GetProcessedDocument(c.Request.Context(), taskID)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to get result", err)
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to serialize result", err)
		return
	}

	filename := fmt.Sprintf("result_%s.json", taskID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", resultJSON)
}

// CancelTask cancels a pending task.
func (h *DocumentHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	if err := h.service.CancelTask(c.Request.Context(), taskID); err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to cancel task", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task cancelled successfully",
		"taskId":  taskID,
	})
}

// CacheStats reports the extraction cache contents.
func (h *DocumentHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CacheStats(c.Request.Context()))
}

// ClearCache drops every cached extraction.
func (h *DocumentHandler) ClearCache(c *gin.Context) {
	h.service.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}

func (h *DocumentHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(status, response)
}
