package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// ImagePreprocessor transforms a page image before recognition.
type ImagePreprocessor interface {
	Process(img image.Image) (image.Image, error)
}

type GrayscaleProcessor struct{}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

type ContrastNormalizationProcessor struct{}

func (p *ContrastNormalizationProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, 20), nil
}

type SharpenProcessor struct {
	Strength float64
}

func (p *SharpenProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Sharpen(img, p.Strength), nil
}

// DefaultPipeline is the preprocessing chain applied to every page
// raster before recognition.
func DefaultPipeline() []ImagePreprocessor {
	return []ImagePreprocessor{
		&GrayscaleProcessor{},
		&ContrastNormalizationProcessor{},
		&SharpenProcessor{Strength: 0.5},
	}
}

// preprocessPNG decodes a page image, runs it through the pipeline and
// re-encodes it as PNG bytes for the recognizer.
func preprocessPNG(data []byte, pipeline []ImagePreprocessor) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}

	for _, p := range pipeline {
		img, err = p.Process(img)
		if err != nil {
			return nil, fmt.Errorf("preprocess page image: %w", err)
		}
		if img == nil {
			return nil, fmt.Errorf("preprocessor returned nil image")
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), nil
}
