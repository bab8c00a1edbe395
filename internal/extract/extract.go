package extract

import (
	"context"
	"fmt"

	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// ExtractionError reports a document that could not be parsed at all in
// its claimed format. Per-page failures are absorbed as inline markers
// and never surface as this error.
type ExtractionError struct {
	FileName string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.FileName, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Output is the raw product of format dispatch, before scan detection
// and OCR escalation.
type Output struct {
	Text      string
	PageCount int
}

// Extractor dispatches a source document to the extractor for its
// declared format. Unknown extensions yield a placeholder text, not an
// error, so the pipeline always has something to hand downstream.
type Extractor struct {
	pdf    *PDFExtractor
	docx   *DOCXExtractor
	doc    *DOCExtractor
	logger logger.Logger
}

func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{
		pdf:    NewPDFExtractor(log),
		docx:   &DOCXExtractor{},
		doc:    NewDOCExtractor(log),
		logger: log,
	}
}

// PDF exposes the PDF extractor for callers that need page-level
// access, such as the orchestrator's quick pass.
func (e *Extractor) PDF() *PDFExtractor {
	return e.pdf
}

// Extract produces raw text for the document's declared format.
func (e *Extractor) Extract(ctx context.Context, doc *models.SourceDocument) (*Output, error) {
	ext := doc.Ext()
	switch ext {
	case ".pdf":
		text, pages, err := e.pdf.Extract(ctx, doc.Content)
		if err != nil {
			return nil, &ExtractionError{FileName: doc.FileName, Err: err}
		}
		return &Output{Text: text, PageCount: pages}, nil

	case ".docx":
		text, err := e.docx.Extract(doc.Content)
		if err != nil {
			return nil, &ExtractionError{FileName: doc.FileName, Err: err}
		}
		return &Output{Text: text}, nil

	case ".doc":
		// Legacy binary Word never hard-fails: conversion degrades to a
		// printable-byte salvage of the raw content.
		return &Output{Text: e.doc.Extract(ctx, doc)}, nil

	case ".txt", ".text":
		return &Output{Text: ExtractPlainText(doc.Content)}, nil

	default:
		e.logger.Warn("unsupported file type, returning placeholder",
			logger.String("fileName", doc.FileName),
			logger.String("ext", ext),
		)
		return &Output{Text: UnsupportedPlaceholder(doc.FileName, ext)}, nil
	}
}

// UnsupportedPlaceholder is the text returned for file types no
// extractor claims. Downstream analysis simply scores it poorly.
func UnsupportedPlaceholder(fileName, ext string) string {
	if ext == "" {
		ext = "unknown"
	}
	return fmt.Sprintf(
		"[Unsupported file type: %s]\nThe file %q could not be converted to text. Supported formats are PDF, DOCX, DOC and TXT.",
		ext, fileName,
	)
}
