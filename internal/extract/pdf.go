package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// DefaultChunkSize bounds how many pages are extracted concurrently.
// Chunks run one after another so a huge PDF never fans out unbounded.
const DefaultChunkSize = 4

// PageTextItem is a tagged view of one content item on a PDF page. The
// adapter decides the kind once so callers never shape-sniff.
type PageTextItem struct {
	Kind  PageItemKind
	Value string
}

type PageItemKind int

const (
	ItemText PageItemKind = iota
	ItemUnknown
)

// PDFExtractor walks PDF pages and assembles their text content in
// page order, extracting fixed-size chunks of pages concurrently.
type PDFExtractor struct {
	ChunkSize int
	logger    logger.Logger
}

func NewPDFExtractor(log logger.Logger) *PDFExtractor {
	return &PDFExtractor{
		ChunkSize: DefaultChunkSize,
		logger:    log,
	}
}

// PageCount opens the document and returns its page count.
func (e *PDFExtractor) PageCount(content []byte) (int, error) {
	r, err := e.open(content)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// Extract returns the full document text and page count. Item strings
// within a page are joined with single spaces, pages with newlines.
// A failing page is recorded inline and never aborts the document.
func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (string, int, error) {
	r, err := e.open(content)
	if err != nil {
		return "", 0, err
	}

	numPages := r.NumPage()
	pages, err := extractChunked(ctx, numPages, e.chunkSize(), func(pageNum int) (string, error) {
		return extractPage(r, pageNum)
	})
	if err != nil {
		return "", numPages, err
	}

	return strings.Join(pages, "\n"), numPages, nil
}

// ExtractPages extracts the inclusive 1-based page range sequentially.
// Used for the orchestrator's quick partial pass on large documents.
func (e *PDFExtractor) ExtractPages(ctx context.Context, content []byte, from, to int) (string, error) {
	r, err := e.open(content)
	if err != nil {
		return "", err
	}

	if from < 1 {
		from = 1
	}
	if n := r.NumPage(); to > n {
		to = n
	}

	var parts []string
	for i := from; i <= to; i++ {
		if err := ctx.Err(); err != nil {
			return strings.Join(parts, "\n"), err
		}
		text, err := extractPage(r, i)
		if err != nil {
			parts = append(parts, pageErrorMarker(i))
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func (e *PDFExtractor) open(content []byte) (*pdf.Reader, error) {
	reader := bytes.NewReader(content)
	r, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

func (e *PDFExtractor) chunkSize() int {
	if e.ChunkSize > 0 {
		return e.ChunkSize
	}
	return DefaultChunkSize
}

// extractChunked runs extractFn for pages 1..numPages in fixed-size
// chunks: all pages of a chunk concurrently, chunks sequentially. The
// returned slice is in page order regardless of completion order. A
// page-level failure becomes an inline marker in that page's slot.
func extractChunked(ctx context.Context, numPages, chunkSize int, extractFn func(pageNum int) (string, error)) ([]string, error) {
	pages := make([]string, numPages)

	for start := 0; start < numPages; start += chunkSize {
		end := start + chunkSize
		if end > numPages {
			end = numPages
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			idx := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				text, err := extractFn(idx + 1)
				if err != nil {
					pages[idx] = pageErrorMarker(idx + 1)
					return nil
				}
				pages[idx] = text
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return pages, err
		}
	}

	return pages, nil
}

// extractPage pulls the text content items off one page. The pdf
// library panics on some malformed content streams, so the recover
// turns those into a page-level error.
func extractPage(r *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d content: %v", pageNum, rec)
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	items := pageItems(page)
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Kind == ItemText && item.Value != "" {
			parts = append(parts, item.Value)
		}
	}
	return strings.Join(parts, " "), nil
}

// pageItems adapts the library's content items into tagged variants.
func pageItems(page pdf.Page) []PageTextItem {
	content := page.Content()
	items := make([]PageTextItem, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			items = append(items, PageTextItem{Kind: ItemUnknown})
			continue
		}
		items = append(items, PageTextItem{Kind: ItemText, Value: t.S})
	}
	return items
}

func pageErrorMarker(pageNum int) string {
	return fmt.Sprintf("[Error extracting page %d]", pageNum)
}
