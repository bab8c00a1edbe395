package process

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AliceDavies2025/clincerta/internal/extract"
	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/internal/ocr"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// ProgressFunc receives coarse advisory milestones on a 0-100 scale.
// It is telemetry, not a correctness contract, and may be nil.
type ProgressFunc func(percent int, stage string)

// Config tunes the orchestration of one document's processing run.
type Config struct {
	// QuickPassPageThreshold: PDFs with more pages than this get a fast
	// partial pass over the first pages before full extraction.
	QuickPassPageThreshold int
	// QuickPassPages is how many leading pages the quick pass covers.
	QuickPassPages int
	// OCRTimeout bounds one OCR engine invocation. OCR is the dominant
	// latency risk and must never block the result indefinitely.
	OCRTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		QuickPassPageThreshold: 10,
		QuickPassPages:         3,
		OCRTimeout:             2 * time.Minute,
	}
}

// Processor coordinates format dispatch, scan detection, OCR
// escalation and degraded fallbacks for a single document.
type Processor struct {
	extractor *extract.Extractor
	detector  *extract.ScanDetector
	ocrEngine ocr.Engine // nil disables OCR escalation
	cfg       Config
	logger    logger.Logger
}

func NewProcessor(extractor *extract.Extractor, detector *extract.ScanDetector, ocrEngine ocr.Engine, cfg Config, log logger.Logger) *Processor {
	if cfg.QuickPassPageThreshold <= 0 {
		cfg.QuickPassPageThreshold = DefaultConfig().QuickPassPageThreshold
	}
	if cfg.QuickPassPages <= 0 {
		cfg.QuickPassPages = DefaultConfig().QuickPassPages
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = DefaultConfig().OCRTimeout
	}
	return &Processor{
		extractor: extractor,
		detector:  detector,
		ocrEngine: ocrEngine,
		cfg:       cfg,
		logger:    log,
	}
}

// Process runs the full pipeline for one document. The result always
// carries some text when at all possible; only a document that cannot
// be opened and yields nothing on salvage returns an error.
func (p *Processor) Process(ctx context.Context, doc *models.SourceDocument, onProgress ProgressFunc) (*models.ExtractionResult, error) {
	start := time.Now()
	report := func(percent int, stage string) {
		if onProgress != nil {
			onProgress(percent, stage)
		}
	}

	report(0, "starting")

	result := &models.ExtractionResult{}
	isPDF := doc.Ext() == ".pdf"

	if isPDF {
		p.quickPass(ctx, doc, report)
	}

	report(40, "extracting text")
	out, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		var exErr *extract.ExtractionError
		if !errors.As(err, &exErr) {
			return nil, err
		}

		// Degraded fallback: read the raw bytes as text before giving up.
		p.logger.Warn("extraction failed, attempting raw-byte fallback",
			logger.String("fileName", doc.FileName),
			logger.Error(err),
		)
		salvaged := extract.SalvageText(doc.Content)
		if strings.TrimSpace(salvaged) == "" {
			return nil, err
		}
		result.Text = salvaged
		result.Error = exErr.Error()
	} else {
		result.Text = out.Text
		result.PageCount = out.PageCount
	}

	report(70, "text extracted")

	result.IsScanned = p.detector.IsScanned(result.Text, result.PageCount)

	if result.IsScanned && isPDF && p.ocrEngine != nil {
		report(80, "running ocr")
		p.applyOCR(ctx, doc, result)
	}

	result.ProcessingTime = time.Since(start)
	report(100, "done")
	return result, nil
}

// quickPass extracts the first few pages of a large PDF so callers see
// an early progress signal. The partial text is superseded by the full
// extraction before Process returns.
func (p *Processor) quickPass(ctx context.Context, doc *models.SourceDocument, report ProgressFunc) {
	pages, err := p.extractor.PDF().PageCount(doc.Content)
	if err != nil || pages <= p.cfg.QuickPassPageThreshold {
		return
	}

	if _, err := p.extractor.PDF().ExtractPages(ctx, doc.Content, 1, p.cfg.QuickPassPages); err == nil {
		report(25, "partial text available")
	}
}

// applyOCR escalates a scanned document to the OCR engine under a
// bounded timeout. Failure never propagates: the native extraction (or
// the sentinel, when there is nothing else) is what the caller gets.
func (p *Processor) applyOCR(ctx context.Context, doc *models.SourceDocument, result *models.ExtractionResult) {
	ocrCtx, cancel := context.WithTimeout(ctx, p.cfg.OCRTimeout)
	defer cancel()

	text, err := p.ocrEngine.Recognize(ocrCtx, doc)
	if err != nil {
		p.logger.Warn("ocr failed, keeping native extraction",
			logger.String("fileName", doc.FileName),
			logger.Error(err),
		)
		if strings.TrimSpace(result.Text) == "" {
			result.Text = ocr.FailureSentinel
		}
		result.Error = "OCR was attempted but failed: " + err.Error()
		return
	}

	// Use the recognized text only when it beats what the text layer gave us.
	if len(strings.TrimSpace(text)) > len(strings.TrimSpace(result.Text)) {
		result.Text = text
		result.OCRApplied = true
	}
}
