package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// TesseractEngine rasterizes PDF pages and recognizes them one at a
// time with a local Tesseract instance. One gosseract client is created
// per Recognize call and released before it returns.
type TesseractEngine struct {
	raster    *Rasterizer
	pipeline  []ImagePreprocessor
	languages []string
	logger    logger.Logger
}

func NewTesseractEngine(dpi int, log logger.Logger) (*TesseractEngine, error) {
	raster, err := NewRasterizer(dpi)
	if err != nil {
		return nil, err
	}
	return &TesseractEngine{
		raster:    raster,
		pipeline:  DefaultPipeline(),
		languages: []string{"eng"},
		logger:    log,
	}, nil
}

// Recognize renders each page at the configured DPI, preprocesses it
// and runs recognition. A page failure is logged and skipped; the
// successful pages still come back, separated by blank lines. Only a
// run with zero recognized pages is an error.
func (e *TesseractEngine) Recognize(ctx context.Context, doc *models.SourceDocument) (string, error) {
	pages, cleanup, err := e.raster.Rasterize(ctx, doc.Content)
	if err != nil {
		return "", fmt.Errorf("rasterize %s: %w", doc.FileName, err)
	}
	defer cleanup()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(e.languages, "+")); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}

	var parts []string
	for i, pagePath := range pages {
		if err := ctx.Err(); err != nil {
			return strings.Join(parts, "\n\n"), err
		}

		text, err := e.recognizePage(client, pagePath)
		if err != nil {
			e.logger.Warn("ocr failed for page, skipping",
				logger.String("fileName", doc.FileName),
				logger.Int("page", i+1),
				logger.Error(err),
			)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text recognized in %s", doc.FileName)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (e *TesseractEngine) recognizePage(client *gosseract.Client, pagePath string) (string, error) {
	data, err := os.ReadFile(pagePath)
	if err != nil {
		return "", err
	}

	processed, err := preprocessPNG(data, e.pipeline)
	if err != nil {
		// Recognition on the unprocessed raster still beats nothing.
		processed = data
	}

	if err := client.SetImageFromBytes(processed); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *TesseractEngine) Close() error {
	return nil
}
