package extract

import (
	"strings"
)

// ScanPolicy selects which scanned-document heuristic applies. Both
// formulas exist in the wild; callers pick one explicitly and keep it
// consistent rather than mixing them.
type ScanPolicy string

const (
	// ScanPolicyPerPage flags a document whose extracted characters per
	// page fall under the threshold.
	ScanPolicyPerPage ScanPolicy = "per_page"

	// ScanPolicyTotal flags a document whose trimmed total text falls
	// under the threshold regardless of page count.
	ScanPolicyTotal ScanPolicy = "total"
)

// DefaultCharsPerPage is the empirical density under which a PDF page
// is assumed to be an image without a text layer.
const DefaultCharsPerPage = 100

// ScanDetector classifies extracted text as coming from a scanned
// (image-only) document. Pure function of its inputs, no side effects.
type ScanDetector struct {
	Policy    ScanPolicy
	Threshold int
}

func NewScanDetector(policy ScanPolicy, threshold int) *ScanDetector {
	if threshold <= 0 {
		threshold = DefaultCharsPerPage
	}
	if policy != ScanPolicyTotal {
		policy = ScanPolicyPerPage
	}
	return &ScanDetector{Policy: policy, Threshold: threshold}
}

// IsScanned reports whether the extracted text is too sparse for the
// document to have a real text layer. pageCount is zero for non-PDF
// inputs, in which case the total-text formula applies.
func (d *ScanDetector) IsScanned(text string, pageCount int) bool {
	trimmed := strings.TrimSpace(text)

	if d.Policy == ScanPolicyTotal || pageCount <= 0 {
		return len(trimmed) < d.Threshold
	}
	return len(trimmed)/pageCount < d.Threshold
}
