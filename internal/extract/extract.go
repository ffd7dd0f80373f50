// Package extract converts uploaded document bytes into plain text. Formats
// are dispatched by filename extension; scanned PDFs with no embedded text are
// a hard failure since there is no OCR fallback.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat is returned for extensions outside pdf/docx/txt.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoText is returned when a format that requires embedded text yields none.
	ErrNoText = errors.New("no extractable text")
)

// ExtractionError wraps a parse failure for a supported format.
type ExtractionError struct {
	FileName string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.FileName, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Text extracts plain text from raw document bytes, dispatching on the
// filename extension. Supported: .pdf, .docx, .txt.
func Text(data []byte, fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", &ExtractionError{FileName: fileName, Err: err}
		}
		if strings.TrimSpace(text) == "" {
			return "", &ExtractionError{FileName: fileName, Err: ErrNoText}
		}
		return strings.TrimSpace(text), nil
	case ".docx":
		text, err := extractDOCX(data)
		if err != nil {
			return "", &ExtractionError{FileName: fileName, Err: err}
		}
		if strings.TrimSpace(text) == "" {
			return "", &ExtractionError{FileName: fileName, Err: ErrNoText}
		}
		return strings.TrimSpace(text), nil
	case ".txt":
		if !utf8.Valid(data) {
			return "", &ExtractionError{FileName: fileName, Err: errors.New("not valid UTF-8")}
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
