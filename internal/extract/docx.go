package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCXExtractor pulls the raw text out of the zip-packaged WordprocessingML
// body. Formatting, tables and headers are discarded; only paragraph text
// survives.
type DOCXExtractor struct{}

// Extract reads word/document.xml from the package and walks its tokens.
func (e *DOCXExtractor) Extract(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx package: %w", err)
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open document body: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("document body not found in package")
	}
	defer docXML.Close()

	return parseDocumentXML(docXML)
}

// parseDocumentXML flattens the XML body: paragraph ends become
// newlines, tabs and line breaks keep their whitespace, everything
// else is character data.
func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
