package ocr

import (
	"context"

	"github.com/AliceDavies2025/clincerta/internal/models"
)

// FailureSentinel is the text a caller falls back to when recognition
// was attempted and produced nothing usable. It keeps the pipeline
// moving with a visible caveat instead of a hard failure.
const FailureSentinel = "[OCR was attempted on this document but no text could be recognized]"

// Engine recognizes text in a scanned document. Recognition is serial
// per engine instance; callers bound each invocation with a context
// timeout since OCR dominates pipeline latency.
type Engine interface {
	Recognize(ctx context.Context, doc *models.SourceDocument) (string, error)
	Close() error
}
