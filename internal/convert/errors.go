package convert

import (
	"errors"
	"strings"

	"examflow/internal/util"
)

// ErrorCode is the machine-readable classification attached to failed task
// results. Extraction shortfalls never reach this taxonomy; it only covers
// the upstream acquisition and conversion steps that can fail a document.
type ErrorCode string

const (
	ErrorDownload    ErrorCode = "download"
	ErrorTooLarge    ErrorCode = "too-large"
	ErrorUnsupported ErrorCode = "unsupported-format"
	ErrorConversion  ErrorCode = "conversion"
	ErrorNoText      ErrorCode = "no-text"
	ErrorTimeout     ErrorCode = "timeout"
	ErrorInternal    ErrorCode = "internal"
)

func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, util.ErrFileTooLarge):
		return ErrorTooLarge
	case errors.Is(err, util.ErrUnsupportedFormat):
		return ErrorUnsupported
	case errors.Is(err, util.ErrNoExtractableText):
		return ErrorNoText
	case errors.Is(err, util.ErrDownloadFailed):
		return ErrorDownload
	}
	return ClassifyMessage(err.Error())
}

// ClassifyMessage classifies by message text alone, for errors that crossed
// an activity boundary and lost their wrapped sentinels.
func ClassifyMessage(msg string) ErrorCode {
	if msg == "" {
		return ""
	}
	e := strings.ToLower(msg)
	switch {
	case strings.Contains(e, "maximum file size"):
		return ErrorTooLarge
	case strings.Contains(e, "unsupported document format"):
		return ErrorUnsupported
	case strings.Contains(e, "no extractable text"):
		return ErrorNoText
	case strings.Contains(e, "deadline"), strings.Contains(e, "timeout"):
		return ErrorTimeout
	case strings.Contains(e, "download"), strings.Contains(e, "connection refused"), strings.Contains(e, "no such host"):
		return ErrorDownload
	case strings.Contains(e, "pdf"), strings.Contains(e, "convert"), strings.Contains(e, "extract"):
		return ErrorConversion
	default:
		return ErrorInternal
	}
}

// Retryable reports whether the upstream collaborator may retry the task.
// Content-shape problems are deterministic and never retryable; transient
// transport failures are.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrorDownload, ErrorTimeout:
		return true
	default:
		return false
	}
}
