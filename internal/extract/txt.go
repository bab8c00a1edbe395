package extract

import (
	"bytes"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExtractPlainText decodes a plain-text document as UTF-8, dropping a
// leading byte-order mark and replacing invalid sequences.
func ExtractPlainText(content []byte) string {
	content = bytes.TrimPrefix(content, utf8BOM)
	return string(bytes.ToValidUTF8(content, []byte("�")))
}
