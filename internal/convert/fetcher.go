package convert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"examflow/internal/util"
)

// Fetcher acquires a task's source file. The production implementation
// downloads over HTTP; tests substitute their own.
type Fetcher interface {
	Fetch(ctx context.Context, fileURL string) (localPath string, err error)
}

type HTTPFetcher struct {
	client  *http.Client
	tempDir string
	maxSize int64
}

func NewHTTPFetcher(tempDir string, timeout time.Duration, maxSize int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		tempDir: tempDir,
		maxSize: maxSize,
	}
}

// Fetch downloads fileURL into the temp dir and returns the local path.
// Callers own cleanup of the returned file.
func (f *HTTPFetcher) Fetch(ctx context.Context, fileURL string) (string, error) {
	if err := util.EnsureDir(f.tempDir); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", util.ErrDownloadFailed, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", util.ErrDownloadFailed, resp.StatusCode)
	}
	if f.maxSize > 0 && resp.ContentLength > f.maxSize {
		return "", fmt.Errorf("%w: %d bytes", util.ErrFileTooLarge, resp.ContentLength)
	}

	name := filenameFromURL(fileURL)
	tmp, err := os.CreateTemp(f.tempDir, "doc-*-"+name)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	limit := io.Reader(resp.Body)
	if f.maxSize > 0 {
		limit = io.LimitReader(resp.Body, f.maxSize+1)
	}
	n, err := io.Copy(tmp, limit)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		util.RemoveQuiet(tmp.Name())
		return "", fmt.Errorf("%w: write body: %v", util.ErrDownloadFailed, err)
	}
	if f.maxSize > 0 && n > f.maxSize {
		util.RemoveQuiet(tmp.Name())
		return "", fmt.Errorf("%w: body exceeds %d bytes", util.ErrFileTooLarge, f.maxSize)
	}
	return tmp.Name(), nil
}

// filenameFromURL keeps the source extension so the converter can dispatch
// on it; query strings and path traversal are stripped.
func filenameFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "document"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return strings.ReplaceAll(name, string(os.PathSeparator), "-")
}
