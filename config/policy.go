package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy carries the tunable thresholds for scan detection, golden
// thread evaluation and OCR. All fields have working defaults so a
// deployment without a policy file behaves sensibly.
type Policy struct {
	ScanDetection ScanDetectionPolicy `yaml:"scan_detection"`
	GoldenThread  GoldenThreadPolicy  `yaml:"golden_thread"`
	OCR           OCRPolicy           `yaml:"ocr"`
}

type ScanDetectionPolicy struct {
	// Policy selects the heuristic: "per_page" compares average
	// characters per page against CharsPerPage, "total" compares the
	// trimmed document length against MinTotalChars.
	Policy        string `yaml:"policy"`
	CharsPerPage  int    `yaml:"chars_per_page"`
	MinTotalChars int    `yaml:"min_total_chars"`
}

type GoldenThreadPolicy struct {
	MinScore    int `yaml:"min_score"`
	MinSections int `yaml:"min_sections"`
}

type OCRPolicy struct {
	Engine         string `yaml:"engine"`
	DPI            int    `yaml:"dpi"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DefaultPolicy returns the compiled-in thresholds.
func DefaultPolicy() *Policy {
	return &Policy{
		ScanDetection: ScanDetectionPolicy{
			Policy:        "per_page",
			CharsPerPage:  100,
			MinTotalChars: 100,
		},
		GoldenThread: GoldenThreadPolicy{
			MinScore:    70,
			MinSections: 5,
		},
		OCR: OCRPolicy{
			Engine:         "tesseract",
			DPI:            300,
			TimeoutSeconds: 120,
		},
	}
}

// LoadPolicy reads a yaml policy file, layering it over the defaults.
// A missing file is not an error; a malformed one is.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) validate() error {
	switch p.ScanDetection.Policy {
	case "per_page", "total":
	default:
		return fmt.Errorf("invalid scan detection policy %q", p.ScanDetection.Policy)
	}
	if p.GoldenThread.MinScore < 0 || p.GoldenThread.MinScore > 100 {
		return fmt.Errorf("golden thread min_score must be between 0 and 100, got %d", p.GoldenThread.MinScore)
	}
	if p.GoldenThread.MinSections < 0 {
		return fmt.Errorf("golden thread min_sections must not be negative, got %d", p.GoldenThread.MinSections)
	}
	if p.OCR.DPI <= 0 {
		return fmt.Errorf("ocr dpi must be positive, got %d", p.OCR.DPI)
	}
	return nil
}
