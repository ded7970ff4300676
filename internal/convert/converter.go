package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"examflow/internal/util"

	"github.com/ledongthuc/pdf"
)

// Converter turns a local document file into plain text for the extraction
// pipeline. Dispatch is by file extension.
type Converter interface {
	ToText(path string) (string, error)
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true,
	".csv": true, ".html": true, ".json": true, ".xml": true,
}

type FileConverter struct{}

func NewFileConverter() *FileConverter {
	return &FileConverter{}
}

func (c *FileConverter) ToText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return pdfToText(path)
	case textExtensions[ext]:
		return plainToText(path)
	default:
		return "", fmt.Errorf("%w: %s", util.ErrUnsupportedFormat, ext)
	}
}

func pdfToText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	text := util.SanitizeText(buf.String())
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

func plainToText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	text := util.SanitizeText(string(b))
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

// Supported reports whether a filename has an extension the converter can
// handle; batch ingestion uses it to skip foreign files.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pdf" || textExtensions[ext]
}
