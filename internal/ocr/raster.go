package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// DefaultDPI is the rasterization resolution for OCR. 300 is the usual
// sweet spot between recognition accuracy and render time.
const DefaultDPI = 300

// Rasterizer renders PDF pages to page images through the pdftoppm
// CLI. All raster files live in a scoped temp directory that the
// returned cleanup removes on every exit path.
type Rasterizer struct {
	tool string
	DPI  int
}

func NewRasterizer(dpi int) (*Rasterizer, error) {
	path, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm not available: %w", err)
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{tool: path, DPI: dpi}, nil
}

// Rasterize writes the PDF to a temp dir, renders one PNG per page and
// returns the page image paths in page order plus a cleanup func. The
// cleanup must be called regardless of outcome.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfContent []byte) ([]string, func(), error) {
	dir, err := os.MkdirTemp("", "clincerta-ocr-*")
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	src := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(src, pdfContent, 0600); err != nil {
		cleanup()
		return nil, func() {}, err
	}

	cmd := exec.CommandContext(ctx, r.tool,
		"-r", fmt.Sprint(r.DPI),
		"-png",
		src,
		filepath.Join(dir, "page"),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("pdftoppm: %v: %s", err, out)
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(pages)

	if len(pages) == 0 {
		cleanup()
		return nil, func() {}, fmt.Errorf("pdftoppm produced no pages")
	}
	return pages, cleanup, nil
}
