package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"examflow/internal/util"
)

func TestFileConverterPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exam.txt")
	if err := os.WriteFile(path, []byte("1. 题目\x00文本 答案:对"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err := NewFileConverter().ToText(path)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if text != "1. 题目文本 答案:对" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFileConverterUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileConverter().ToText(path); !errors.Is(err, util.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFileConverterEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.md")
	if err := os.WriteFile(path, []byte("  \n\x01 "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileConverter().ToText(path); !errors.Is(err, util.ErrNoExtractableText) {
		t.Fatalf("expected ErrNoExtractableText, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.TXT", "c.md", "d.csv"} {
		if !Supported(name) {
			t.Fatalf("%s should be supported", name)
		}
	}
	for _, name := range []string{"e.pptx", "f.exe", "g"} {
		if Supported(name) {
			t.Fatalf("%s should not be supported", name)
		}
	}
}
