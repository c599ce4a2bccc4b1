package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rat/core/apperrors"
	"rat/core/objects"
	"rat/storage/local"
)

func mustHash(t *testing.T, s string) objects.Hash {
	t.Helper()
	h, err := objects.ParseHash(s)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestResolvePrefix(t *testing.T) {
	idx, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	full := "ab" + strings.Repeat("11", 31)
	c := &objects.Commit{Hash: mustHash(t, full), Message: "first"}
	if err := idx.Put(c); err != nil {
		t.Fatal(err)
	}

	resolved, err := idx.ResolvePrefix("ab11")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != full {
		t.Errorf("expected %s, got %s", full, resolved)
	}
}

func TestResolvePrefixUnknown(t *testing.T) {
	idx, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	_, err = idx.ResolvePrefix("dead")
	var unknown apperrors.UnknownCommitError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownCommitError, got %v", err)
	}
}

func TestResolvePrefixAmbiguous(t *testing.T) {
	idx, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	h1 := "aaaa" + strings.Repeat("11", 30)
	h2 := "aaaa" + strings.Repeat("22", 30)
	for _, h := range []string{h1, h2} {
		if err := idx.Put(&objects.Commit{Hash: mustHash(t, h)}); err != nil {
			t.Fatal(err)
		}
	}

	_, err = idx.ResolvePrefix("aaaa")
	var ambiguous apperrors.AmbiguousRefError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousRefError, got %v", err)
	}

	// A longer prefix disambiguates.
	resolved, err := idx.ResolvePrefix("aaaa11")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != h1 {
		t.Errorf("expected %s, got %s", h1, resolved)
	}
}

func TestReindexFromCommitNamespace(t *testing.T) {
	nestDir := filepath.Join(t.TempDir(), ".rat")
	if err := os.MkdirAll(filepath.Join(nestDir, "commits"), 0755); err != nil {
		t.Fatal(err)
	}

	store := local.New(nestDir)
	c := &objects.Commit{Hash: objects.NewHash([]byte("seed")), Message: "first"}
	if err := store.WriteCommit(c); err != nil {
		t.Fatal(err)
	}

	idx, err := Open(nestDir)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Reindex(store); err != nil {
		t.Fatal(err)
	}

	full := c.Hash.String()
	resolved, err := idx.ResolvePrefix(full[:8])
	if err != nil {
		t.Fatal(err)
	}
	if resolved != full {
		t.Errorf("expected %s, got %s", full, resolved)
	}
}
