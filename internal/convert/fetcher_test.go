package convert

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"examflow/internal/util"
)

func TestHTTPFetcherDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1. 题目 答案:对"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(t.TempDir(), 5*time.Second, 1<<20)
	path, err := f.Fetch(context.Background(), srv.URL+"/exam.txt")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "1. 题目 答案:对" {
		t.Fatalf("unexpected body: %q", b)
	}
}

func TestHTTPFetcherRejectsOversize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(t.TempDir(), 5*time.Second, 1024)
	if _, err := f.Fetch(context.Background(), srv.URL+"/big.txt"); !errors.Is(err, util.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestHTTPFetcherBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(t.TempDir(), 5*time.Second, 0)
	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.pdf"); !errors.Is(err, util.ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
}

func TestFilenameFromURL(t *testing.T) {
	cases := map[string]string{
		"http://files.local/a/b/exam.docx?sig=abc": "exam.docx",
		"http://files.local/":                      "document",
		"::bad::":                                  "document",
	}
	for in, want := range cases {
		if got := filenameFromURL(in); got != want {
			t.Fatalf("filenameFromURL(%q): got %q want %q", in, got, want)
		}
	}
}
