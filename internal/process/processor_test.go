package process

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliceDavies2025/clincerta/internal/extract"
	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/internal/ocr"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

type stubEngine struct {
	text string
	err  error
}

func (s *stubEngine) Recognize(ctx context.Context, doc *models.SourceDocument) (string, error) {
	return s.text, s.err
}

func (s *stubEngine) Close() error { return nil }

func newTestProcessor(engine ocr.Engine) *Processor {
	log := logger.NewTestLogger()
	return NewProcessor(
		extract.NewExtractor(log),
		extract.NewScanDetector(extract.ScanPolicyPerPage, extract.DefaultCharsPerPage),
		engine,
		DefaultConfig(),
		log,
	)
}

func TestProcessPlainText(t *testing.T) {
	text := strings.Repeat("The client attended the session and engaged well. ", 10)
	doc := &models.SourceDocument{FileName: "note.txt", Content: []byte(text)}

	result, err := newTestProcessor(nil).Process(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(text), strings.TrimSpace(result.Text))
	assert.False(t, result.IsScanned)
	assert.False(t, result.OCRApplied)
	assert.Empty(t, result.Error)
}

func TestProcessShortTextFlagsScanned(t *testing.T) {
	doc := &models.SourceDocument{FileName: "stamp.txt", Content: []byte("initials only")}

	result, err := newTestProcessor(nil).Process(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.True(t, result.IsScanned)
	// Not a PDF, so no OCR escalation even when flagged.
	assert.False(t, result.OCRApplied)
}

func TestProcessProgressReports(t *testing.T) {
	doc := &models.SourceDocument{
		FileName: "note.txt",
		Content:  []byte(strings.Repeat("progress note content ", 20)),
	}

	var percents []int
	onProgress := func(percent int, stage string) {
		percents = append(percents, percent)
	}

	_, err := newTestProcessor(nil).Process(context.Background(), doc, onProgress)
	require.NoError(t, err)
	require.NotEmpty(t, percents)

	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress must not regress")
	}
	assert.Equal(t, 0, percents[0])
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestProcessSalvageFallback(t *testing.T) {
	// A docx that is not a zip archive fails extraction; the printable
	// bytes still come back through salvage.
	content := append([]byte("Recognizable session words "), 0x00, 0x01, 0x02)
	doc := &models.SourceDocument{FileName: "corrupt.docx", Content: content}

	result, err := newTestProcessor(nil).Process(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Recognizable session words")
	assert.NotEmpty(t, result.Error, "degraded result must carry the extraction error")
}

func TestProcessUnsalvageable(t *testing.T) {
	doc := &models.SourceDocument{
		FileName: "noise.docx",
		Content:  []byte{0x00, 0x01, 0x02, 0x03, 0x04},
	}

	_, err := newTestProcessor(nil).Process(context.Background(), doc, nil)
	assert.Error(t, err)
}

func TestApplyOCRReplacesSparserText(t *testing.T) {
	p := newTestProcessor(&stubEngine{text: strings.Repeat("recognized words from the scan ", 20)})
	doc := &models.SourceDocument{FileName: "scan.pdf"}
	result := &models.ExtractionResult{Text: "thin layer"}

	p.applyOCR(context.Background(), doc, result)

	assert.True(t, result.OCRApplied)
	assert.Contains(t, result.Text, "recognized words")
}

func TestApplyOCRKeepsRicherNativeText(t *testing.T) {
	native := strings.Repeat("native text layer content ", 20)
	p := newTestProcessor(&stubEngine{text: "short"})
	doc := &models.SourceDocument{FileName: "scan.pdf"}
	result := &models.ExtractionResult{Text: native}

	p.applyOCR(context.Background(), doc, result)

	assert.False(t, result.OCRApplied)
	assert.Equal(t, native, result.Text)
}

func TestApplyOCRFailureWithNoNativeText(t *testing.T) {
	p := newTestProcessor(&stubEngine{err: assert.AnError})
	doc := &models.SourceDocument{FileName: "scan.pdf"}
	result := &models.ExtractionResult{}

	p.applyOCR(context.Background(), doc, result)

	assert.Equal(t, ocr.FailureSentinel, result.Text)
	assert.False(t, result.OCRApplied)
	assert.NotEmpty(t, result.Error)
}

func TestApplyOCRFailureKeepsNativeText(t *testing.T) {
	p := newTestProcessor(&stubEngine{err: assert.AnError})
	doc := &models.SourceDocument{FileName: "scan.pdf"}
	result := &models.ExtractionResult{Text: "native layer"}

	p.applyOCR(context.Background(), doc, result)

	assert.Equal(t, "native layer", result.Text)
	assert.NotEmpty(t, result.Error)
}
