package source

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("input.abc", []byte("AB"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("input.abc", []byte("AAB1"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latest, ok := fs.GetLatest("./input.abc")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latest, ok, id2)
	}
	if got := fs.Get(id1).Content; got != "AB" {
		t.Errorf("first version content = %q", got)
	}
	if got := fs.Get(id2).Content; got != "AAB1" {
		t.Errorf("second version content = %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Len = %d, want 2", fs.Len())
	}
}

func TestFileSetHashAndSpan(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("<stdin>", []byte("A\nB"))
	f := fs.Get(id)

	if f.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
	if f.Hash != sha256.Sum256([]byte("A\nB")) {
		t.Error("hash mismatch")
	}
	span := f.Span()
	if span.Offset() != 0 || span.Line() != 1 || span.Fragment() != "A\nB" {
		t.Fatalf("File.Span = %v", span)
	}
	if got := fs.DisplayPath(id); got != "<stdin>" {
		t.Fatalf("DisplayPath = %q", got)
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.abc")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFA\r\nB\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.Content != "A\nB\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", f.Flags)
	}
	if got := fs.DisplayPath(id); got != "crlf.abc" {
		t.Errorf("DisplayPath = %q", got)
	}
}

func TestFileSetLoadReaderNFC(t *testing.T) {
	fs := NewFileSet()
	id, err := fs.LoadReader("<stdin>", strings.NewReader("e\u0301"), LoadOptions{NFC: true})
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	f := fs.Get(id)
	if f.Content != "\u00e9" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileNormalizedNFC == 0 || f.Flags&FileVirtual == 0 {
		t.Errorf("flags = %b", f.Flags)
	}
}

func TestFileSetLoadMissing(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing"), LoadOptions{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
