package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// TextractConfig carries the AWS credentials and region for the cloud
// OCR backend.
type TextractConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// TextractEngine is the cloud OCR alternative: pages are rasterized
// locally and sent to AWS Textract one at a time.
type TextractEngine struct {
	client   *textract.Client
	raster   *Rasterizer
	pipeline []ImagePreprocessor
	logger   logger.Logger
}

func NewTextractEngine(ctx context.Context, cfg *TextractConfig, dpi int, log logger.Logger) (*TextractEngine, error) {
	raster, err := NewRasterizer(dpi)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &TextractEngine{
		client:   textract.NewFromConfig(awsCfg),
		raster:   raster,
		pipeline: DefaultPipeline(),
		logger:   log,
	}, nil
}

func (e *TextractEngine) Recognize(ctx context.Context, doc *models.SourceDocument) (string, error) {
	pages, cleanup, err := e.raster.Rasterize(ctx, doc.Content)
	if err != nil {
		return "", fmt.Errorf("rasterize %s: %w", doc.FileName, err)
	}
	defer cleanup()

	var parts []string
	for i, pagePath := range pages {
		if err := ctx.Err(); err != nil {
			return strings.Join(parts, "\n\n"), err
		}

		text, err := e.recognizePage(ctx, pagePath)
		if err != nil {
			e.logger.Warn("textract failed for page, skipping",
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

func (e *TextractEngine) recognizePage(ctx context.Context, pagePath string) (string, error) {
	data, err := os.ReadFile(pagePath)
	if err != nil {
		return "", err
	}

	processed, err := preprocessPNG(data, e.pipeline)
	if err != nil {
		processed = data
	}

	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: processed},
	})
	if err != nil {
		return "", err
	}

	var lines []string
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, aws.ToString(block.Text))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (e *TextractEngine) Close() error {
	return nil
}
