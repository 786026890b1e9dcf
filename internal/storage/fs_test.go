package storage

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("uploads/a.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := s.Get("uploads/a.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "hello" {
		t.Fatalf("got %q", b)
	}

	if err := s.Delete("uploads/a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete("uploads/a.txt"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Get("uploads/a.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestFSStoreKeysStayInsideBase(t *testing.T) {
	s, _ := NewFSStore(t.TempDir())
	if _, err := s.Put("../../escape.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	// "../.." is cleaned against the root, so the file lands in base.
	if _, err := s.Get("escape.txt"); err != nil {
		t.Fatalf("expected file inside base: %v", err)
	}
	for _, k := range []string{"", "/", `a\b`} {
		if _, err := s.Get(k); !errors.Is(err, ErrBadKey) {
			t.Errorf("Get(%q) err = %v, want ErrBadKey", k, err)
		}
	}
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n == 0 {
		return 0, errors.New("connection reset")
	}
	n := copy(p, strings.Repeat("x", r.n))
	r.n -= n
	return n, nil
}

func TestFSStorePutRemovesPartialFile(t *testing.T) {
	s, _ := NewFSStore(t.TempDir())
	if _, err := s.Put("uploads/partial.pdf", &failingReader{n: 64}); err == nil {
		t.Fatal("expected copy error")
	}
	if _, err := s.Get("uploads/partial.pdf"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("partial file left behind: %v", err)
	}
}
