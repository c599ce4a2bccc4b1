package worktree

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCopyDirRecursiveWithIgnore(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFiles(t, src, map[string]string{
		"a.txt":        "hi",
		"sub/b.txt":    "nested",
		".rat/HEAD":    "ref: refs/heads/main",
		"sub/.rat/x":   "inner nest",
		"sub/deep/c.d": "deep",
	})

	if err := CopyDir(src, dst, map[string]bool{".rat": true}); err != nil {
		t.Fatal(err)
	}

	for path, want := range map[string]string{
		"a.txt":        "hi",
		"sub/b.txt":    "nested",
		"sub/deep/c.d": "deep",
	} {
		data, err := os.ReadFile(filepath.Join(dst, path))
		if err != nil {
			t.Fatalf("expected %s to be copied: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s: expected %q, got %q", path, want, string(data))
		}
	}

	// The ignore set applies at every recursion level.
	for _, path := range []string{".rat", "sub/.rat"} {
		if _, err := os.Stat(filepath.Join(dst, path)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be skipped", path)
		}
	}
}

func TestCopyDirOverwritesExistingFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFiles(t, src, map[string]string{"a.txt": "new"})
	writeFiles(t, dst, map[string]string{"a.txt": "old", "extra.txt": "kept"})

	if err := CopyDir(src, dst, nil); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dst, "a.txt"))
	if string(data) != "new" {
		t.Errorf("expected a.txt overwritten, got %q", string(data))
	}

	// Files absent from the source are left in place.
	if _, err := os.Stat(filepath.Join(dst, "extra.txt")); err != nil {
		t.Error("expected extra.txt to survive the copy")
	}
}

func TestChecksumTree(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":     "hi",
		"sub/b.txt": "nested",
		".rat/HEAD": "x",
	})

	sums, err := ChecksumTree(dir, map[string]bool{".rat": true})
	if err != nil {
		t.Fatal(err)
	}

	if len(sums) != 2 {
		t.Fatalf("expected 2 checksums, got %d: %v", len(sums), sums)
	}
	if _, ok := sums["a.txt"]; !ok {
		t.Error("missing checksum for a.txt")
	}
	if _, ok := sums["sub/b.txt"]; !ok {
		t.Error("missing checksum for sub/b.txt")
	}
}

func TestChecksumTreeDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hi"})

	before, err := ChecksumTree(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	writeFiles(t, dir, map[string]string{"a.txt": "bye"})
	after, err := ChecksumTree(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	if before["a.txt"] == after["a.txt"] {
		t.Error("checksum did not change with content")
	}
}
