package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rat/core/apperrors"
	"rat/core/objects"
	"rat/core/refs"
	"rat/storage/local"
)

type fixture struct {
	refs  *refs.Store
	store *local.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	nestDir := filepath.Join(t.TempDir(), ".rat")
	for _, sub := range []string{"commits", "contents", filepath.Join("refs", "heads")} {
		if err := os.MkdirAll(filepath.Join(nestDir, sub), 0755); err != nil {
			t.Fatal(err)
		}
	}

	refStore := refs.NewStore(nestDir)
	if err := refStore.WriteSymbolicHead("main"); err != nil {
		t.Fatal(err)
	}
	return &fixture{refs: refStore, store: local.New(nestDir)}
}

func (f *fixture) addCommit(t *testing.T, parent, message string) string {
	t.Helper()
	c := &objects.Commit{
		Hash:    objects.NewHash([]byte(parent + message)),
		Parent:  parent,
		Message: message,
	}
	if err := f.store.WriteCommit(c); err != nil {
		t.Fatal(err)
	}
	if err := f.refs.WriteHead(c.Hash.String()); err != nil {
		t.Fatal(err)
	}
	return c.Hash.String()
}

func TestWalkEmptyNest(t *testing.T) {
	f := newFixture(t)

	entries, err := NewWalker(f.refs, f.store).Walk()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %d entries", len(entries))
	}
}

func TestWalkNewestFirst(t *testing.T) {
	f := newFixture(t)
	h1 := f.addCommit(t, "", "first")
	h2 := f.addCommit(t, h1, "second")
	h3 := f.addCommit(t, h2, "third")

	entries, err := NewWalker(f.refs, f.store).Walk()
	if err != nil {
		t.Fatal(err)
	}

	want := []struct{ hash, message string }{
		{h3, "third"},
		{h2, "second"},
		{h1, "first"},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i].Hash != w.hash || entries[i].Message != w.message {
			t.Errorf("entry %d: expected (%s, %q), got (%s, %q)",
				i, w.hash, w.message, entries[i].Hash, entries[i].Message)
		}
	}
}

func TestWalkCarriesBranchNames(t *testing.T) {
	f := newFixture(t)
	h1 := f.addCommit(t, "", "first")
	h2 := f.addCommit(t, h1, "second")

	if err := f.refs.CreateBranch("feature", h1); err != nil {
		t.Fatal(err)
	}
	if err := f.refs.CreateBranch("hotfix", h1); err != nil {
		t.Fatal(err)
	}

	entries, err := NewWalker(f.refs, f.store).Walk()
	if err != nil {
		t.Fatal(err)
	}

	if entries[0].Hash != h2 {
		t.Fatalf("unexpected head entry %s", entries[0].Hash)
	}
	// main advanced to h2 through the symbolic HEAD.
	if len(entries[0].Branches) != 1 || entries[0].Branches[0] != "main" {
		t.Errorf("expected [main] at %s, got %v", h2, entries[0].Branches)
	}
	if len(entries[1].Branches) != 2 || entries[1].Branches[0] != "feature" || entries[1].Branches[1] != "hotfix" {
		t.Errorf("expected sorted [feature hotfix] at %s, got %v", h1, entries[1].Branches)
	}
}

func TestWalkDanglingParentIsCorruption(t *testing.T) {
	f := newFixture(t)
	h1 := f.addCommit(t, "", "first")
	f.addCommit(t, h1, "second")

	// Remove the root commit's metadata; the walk must fail loudly rather
	// than silently truncate.
	if err := os.Remove(f.store.CommitPath(h1)); err != nil {
		t.Fatal(err)
	}

	_, err := NewWalker(f.refs, f.store).Walk()
	var corrupt apperrors.CorruptHistoryError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptHistoryError, got %v", err)
	}
	if corrupt.Hash != h1 {
		t.Errorf("expected corruption reported at %s, got %s", h1, corrupt.Hash)
	}
}
