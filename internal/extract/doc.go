package extract

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

// converterCandidates are external CLI tools able to turn legacy binary
// Word files into plain text, in preference order.
var converterCandidates = []string{"antiword", "catdoc"}

// DOCExtractor handles legacy binary Word documents through an external
// converter. The converter is an optional capability: its absence or
// failure degrades to a printable-byte salvage of the raw content, which
// may be garbled but is never a fatal error.
type DOCExtractor struct {
	converter string
	logger    logger.Logger
}

func NewDOCExtractor(log logger.Logger) *DOCExtractor {
	e := &DOCExtractor{logger: log}
	for _, tool := range converterCandidates {
		if path, err := exec.LookPath(tool); err == nil {
			e.converter = path
			break
		}
	}
	if e.converter == "" {
		log.Warn("no doc converter found, legacy word files degrade to raw-byte salvage",
			logger.Any("candidates", converterCandidates),
		)
	}
	return e
}

// ConverterAvailable reports whether an external converter was found.
func (e *DOCExtractor) ConverterAvailable() bool {
	return e.converter != ""
}

// Extract converts the document via the external tool when available,
// falling back to salvage on any failure.
func (e *DOCExtractor) Extract(ctx context.Context, doc *models.SourceDocument) string {
	if e.converter == "" {
		return SalvageText(doc.Content)
	}

	text, err := e.runConverter(ctx, doc.Content)
	if err != nil {
		e.logger.Warn("doc conversion failed, salvaging raw bytes",
			logger.String("fileName", doc.FileName),
			logger.Error(err),
		)
		return SalvageText(doc.Content)
	}
	return text
}

// runConverter writes the content to a scoped temp file and invokes the
// converter on it. The temp file is removed on every exit path.
func (e *DOCExtractor) runConverter(ctx context.Context, content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "clincerta-*.doc")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	out, err := exec.CommandContext(ctx, e.converter, tmp.Name()).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// SalvageText interprets raw bytes as text on a best-effort basis,
// keeping printable runs and collapsing binary noise into whitespace.
func SalvageText(content []byte) string {
	var sb strings.Builder
	sb.Grow(len(content))

	lastSpace := true
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		i += size

		if r == utf8.RuneError && size == 1 {
			r = ' '
		}
		if r == '\n' || unicode.IsGraphic(r) {
			if unicode.IsSpace(r) {
				if lastSpace {
					continue
				}
				lastSpace = true
			} else {
				lastSpace = false
			}
			sb.WriteRune(r)
			continue
		}
		if !lastSpace {
			sb.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(sb.String())
}
