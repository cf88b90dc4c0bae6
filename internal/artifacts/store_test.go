package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFSStore_PutGetDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	p, err := s.Put(ctx, Name("a1"), []byte(`{"x":1}`))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if p != filepath.Join(dir, "a1.json") {
		t.Fatalf("path = %s", p)
	}
	got, err := s.Get(ctx, "a1.json")
	if err != nil || string(got) != `{"x":1}` {
		t.Fatalf("get: %q %v", got, err)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("dir entries = %d", len(entries))
	}

	if err := s.Delete(ctx, "a1.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "a1.json"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "a1.json"); err != nil {
		t.Fatalf("delete of missing blob should be a no-op: %v", err)
	}
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	s, _ := NewFSStore(t.TempDir())
	for _, name := range []string{"", "..", "../x.json", `a\b.json`, "a/b.json"} {
		if _, err := s.Put(context.Background(), name, []byte("x")); err == nil {
			t.Fatalf("%q: expected error", name)
		}
		if _, err := s.Get(context.Background(), name); err == nil || errors.Is(err, ErrBlobNotFound) {
			t.Fatalf("%q: expected name error, got %v", name, err)
		}
	}
}
