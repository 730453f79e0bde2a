package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNotPDF means the byte stream could not be parsed as a PDF.
	ErrNotPDF = errors.New("not a parseable pdf")
	// ErrNoText means the PDF parsed but contained no extractable text,
	// e.g. a scanned-image-only document.
	ErrNoText = errors.New("no extractable text in pdf")
)

// Extractor adapts ExtractText to the ingestion pipeline's extractor port.
type Extractor struct{}

func (Extractor) Extract(data []byte) (string, error) {
	return ExtractText(bytes.NewReader(data))
}

// ExtractText reads the entire content of r and extracts plain text from the
// PDF, one newline-joined block per page, in page order.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf bytes failed: %w", err)
	}
	if len(b) == 0 {
		return "", ErrNotPDF
	}

	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page does not fail the document.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	out := sb.String()
	if strings.TrimSpace(out) == "" {
		return "", ErrNoText
	}
	return out, nil
}
