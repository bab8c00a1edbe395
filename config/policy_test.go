package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPolicyDefaultsWhenNoFile(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)

	p, err = LoadPolicy("/nonexistent/policy.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestLoadPolicyOverlaysDefaults(t *testing.T) {
	path := writePolicyFile(t, `
scan_detection:
  policy: total
  min_total_chars: 250
golden_thread:
  min_score: 80
`)

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, "total", p.ScanDetection.Policy)
	assert.Equal(t, 250, p.ScanDetection.MinTotalChars)
	assert.Equal(t, 80, p.GoldenThread.MinScore)

	// Untouched fields keep their defaults.
	assert.Equal(t, 100, p.ScanDetection.CharsPerPage)
	assert.Equal(t, 5, p.GoldenThread.MinSections)
	assert.Equal(t, "tesseract", p.OCR.Engine)
	assert.Equal(t, 300, p.OCR.DPI)
}

func TestLoadPolicyRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad scan policy":  "scan_detection:\n  policy: sometimes\n",
		"score over 100":   "golden_thread:\n  min_score: 150\n",
		"negative sections": "golden_thread:\n  min_sections: -1\n",
		"zero dpi":         "ocr:\n  dpi: -10\n",
	}

	for name, content := range cases {
		_, err := LoadPolicy(writePolicyFile(t, content))
		assert.Error(t, err, name)
	}
}

func TestLoadPolicyRejectsMalformedYAML(t *testing.T) {
	_, err := LoadPolicy(writePolicyFile(t, "scan_detection: [not a map"))
	assert.Error(t, err)
}
