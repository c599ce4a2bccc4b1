package refs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"rat/core/apperrors"
)

const (
	symbolicPrefix = "ref: "
	headsPrefix    = "refs/heads/"
)

// HeadKind distinguishes the two flavors of the HEAD slot.
type HeadKind int

const (
	// HeadSymbolic means HEAD names a branch that must be dereferenced.
	HeadSymbolic HeadKind = iota
	// HeadDirect means HEAD holds a commit hash itself (detached state).
	HeadDirect
)

// Head is the parsed value of the HEAD slot. The prefix sniffing happens
// exactly once, in ReadHead; everything downstream switches on Kind.
type Head struct {
	Kind   HeadKind
	Branch string // branch name, set when Kind is HeadSymbolic
	Hash   string // hex commit hash, set when Kind is HeadDirect
}

// Store persists and resolves the nest's named pointers: HEAD and the branch
// refs under refs/heads.
type Store struct {
	nestDir string
}

func NewStore(nestDir string) *Store {
	return &Store{nestDir: nestDir}
}

func (s *Store) headPath() string {
	return filepath.Join(s.nestDir, "HEAD")
}

func (s *Store) branchPath(name string) string {
	return filepath.Join(s.nestDir, "refs", "heads", name)
}

// ReadHead reads and classifies the HEAD slot. A missing or unreadable HEAD
// is a storage error; a nest always has one after init.
func (s *Store) ReadHead() (Head, error) {
	data, err := os.ReadFile(s.headPath())
	if err != nil {
		return Head{}, apperrors.NewStorageError("read HEAD", s.headPath(), err)
	}

	value := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(value, symbolicPrefix); ok {
		return Head{
			Kind:   HeadSymbolic,
			Branch: strings.TrimPrefix(target, headsPrefix),
		}, nil
	}

	return Head{Kind: HeadDirect, Hash: value}, nil
}

// ResolveHead returns the commit hash HEAD currently points at. ok is false
// when there is no commit yet: HEAD is symbolic and the branch ref does not
// exist. That is the legitimate empty-branch state, not an error.
func (s *Store) ResolveHead() (hash string, ok bool, err error) {
	head, err := s.ReadHead()
	if err != nil {
		return "", false, err
	}

	if head.Kind == HeadDirect {
		return head.Hash, head.Hash != "", nil
	}

	path := s.branchPath(head.Branch)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, apperrors.NewStorageError("read branch ref", path, err)
	}

	hash = strings.TrimSpace(string(data))
	return hash, hash != "", nil
}

// WriteHead records a new commit hash through HEAD, mutating exactly one
// slot: the branch ref when HEAD is symbolic, the HEAD file itself when
// detached.
func (s *Store) WriteHead(hash string) error {
	head, err := s.ReadHead()
	if err != nil {
		return err
	}

	if head.Kind == HeadSymbolic {
		return s.writeRef(s.branchPath(head.Branch), hash)
	}
	return s.writeRef(s.headPath(), hash)
}

// WriteSymbolicHead points HEAD at a branch by name.
func (s *Store) WriteSymbolicHead(branch string) error {
	return s.writeRef(s.headPath(), symbolicPrefix+headsPrefix+branch)
}

// CreateBranch writes a new branch ref pointing at hash. If the name is
// already taken the existing ref is left untouched and BranchExistsError is
// returned.
func (s *Store) CreateBranch(name, hash string) error {
	path := s.branchPath(name)
	if _, err := os.Stat(path); err == nil {
		return apperrors.BranchExistsError{Name: name}
	} else if !errors.Is(err, os.ErrNotExist) {
		return apperrors.NewStorageError("create branch", path, err)
	}

	return s.writeRef(path, hash)
}

// ListBranches enumerates every branch ref and its target hash.
func (s *Store) ListBranches() (map[string]string, error) {
	dir := filepath.Join(s.nestDir, "refs", "heads")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewStorageError("list branch refs", dir, err)
	}

	branches := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewStorageError("read branch ref", path, err)
		}
		branches[entry.Name()] = strings.TrimSpace(string(data))
	}

	return branches, nil
}

// Index inverts the branch namespace into a commit hash to branch names
// mapping. A commit may carry zero, one, or many names; names are sorted for
// stable display. Rebuilt by a full scan on every call, which is fine at the
// branch counts this tool expects.
func (s *Store) Index() (map[string][]string, error) {
	branches, err := s.ListBranches()
	if err != nil {
		return nil, err
	}

	index := make(map[string][]string)
	for _, name := range maps.Keys(branches) {
		hash := branches[name]
		index[hash] = append(index[hash], name)
	}
	for _, names := range index {
		slices.Sort(names)
	}

	return index, nil
}

// writeRef replaces the file at path with value by writing a tempfile in the
// same directory and renaming it over the target, so a ref never holds a
// torn value.
func (s *Store) writeRef(path, value string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("write ref", path, err)
	}

	f, err := os.CreateTemp(dir, ".ref-*")
	if err != nil {
		return apperrors.NewStorageError("write ref", path, err)
	}
	tmp := f.Name()

	cleanup := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return apperrors.NewStorageError("write ref", path, err)
	}

	if _, err := f.WriteString(value); err != nil {
		return cleanup(err)
	}
	if err := f.Sync(); err != nil {
		return cleanup(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError("write ref", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.NewStorageError("write ref", path, err)
	}

	return nil
}
