package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in document")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrFileTooLarge      = errors.New("document exceeds maximum file size")
	ErrDownloadFailed    = errors.New("document download failed")
)
