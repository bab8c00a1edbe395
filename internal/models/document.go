package models

import (
	"time"
)

// FileType identifies the declared format of an uploaded document.
type FileType string

const (
	PDF  FileType = "pdf"
	DOCX FileType = "docx"
	DOC  FileType = "doc"
	TXT  FileType = "txt"
)

// SourceDocument is an immutable snapshot of an uploaded file. It is
// provided once per processing call and not retained beyond it except
// through the document cache.
type SourceDocument struct {
	FileName     string
	MediaType    string
	Content      []byte
	Size         int64
	LastModified time.Time
}

// Ext returns the lowercased file extension including the leading dot,
// or an empty string when the name carries none.
func (d *SourceDocument) Ext() string {
	for i := len(d.FileName) - 1; i >= 0; i-- {
		switch d.FileName[i] {
		case '.':
			return lower(d.FileName[i:])
		case '/', '\\':
			return ""
		}
	}
	return ""
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// ExtractionResult is the outcome of one extraction run. A fresh result
// is produced per call and never mutated afterwards.
type ExtractionResult struct {
	Text           string        `json:"text"`
	PageCount      int           `json:"pageCount,omitempty"`
	IsScanned      bool          `json:"isScanned"`
	OCRApplied     bool          `json:"ocrApplied"`
	ProcessingTime time.Duration `json:"processingTime"`
	Error          string        `json:"error,omitempty"`
}

// ProcessingTask tracks one queued document through the pipeline.
type ProcessingTask struct {
	ID        string            `json:"id"`
	Status    ProcessingStatus  `json:"status"`
	Type      string            `json:"type"`
	Priority  int               `json:"priority"`
	Progress  float64           `json:"progress"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty"`
}

type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusRunning   ProcessingStatus = "running"
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
	StatusCancelled ProcessingStatus = "cancelled"
)
