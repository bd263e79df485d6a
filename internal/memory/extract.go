package memory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractText returns the plain text of a document file. PDF pages go
// through the pdf reader; anything else is read as-is.
func extractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading extracted text from %s: %w", path, err)
	}
	return string(text), nil
}
