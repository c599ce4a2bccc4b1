package nest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"rat/core/apperrors"
	"rat/core/config"
	"rat/core/hashdir"
	"rat/core/history"
	"rat/core/logging"
	"rat/core/objects"
	"rat/core/refs"
	"rat/core/worktree"
	"rat/storage/index"
	"rat/storage/local"
)

// DirName is the nest directory created inside the working directory,
// holding every persisted commit, snapshot and ref.
const DirName = ".rat"

const fullHashLen = 64 // hex characters in a full commit hash

// Nest is the repository facade. All entry points take the nest root
// explicitly; there is no process-global storage location.
type Nest struct {
	root    string
	nestDir string
	cfg     *config.Config
	refs    *refs.Store
	store   *local.Store
	index   *index.Index
	log     *logging.Logger
}

// Initialize creates a new nest in root. The layout matches the storage
// contract: HEAD symbolic to the default branch, plus empty commits, contents
// and refs/heads namespaces.
func Initialize(root string) (*Nest, error) {
	nestDir := filepath.Join(root, DirName)
	if _, err := os.Stat(nestDir); err == nil {
		return nil, apperrors.NewUsageError("already a rat nest: %s", nestDir)
	}

	dirs := []string{
		nestDir,
		filepath.Join(nestDir, "commits"),
		filepath.Join(nestDir, "contents"),
		filepath.Join(nestDir, "refs", "heads"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.NewStorageError("initialize nest", dir, err)
		}
	}

	cfgManager := config.NewManager(nestDir)
	cfg, err := cfgManager.Load()
	if err != nil {
		return nil, err
	}
	if err := cfgManager.Save(cfg); err != nil {
		return nil, err
	}

	refStore := refs.NewStore(nestDir)
	if err := refStore.WriteSymbolicHead(cfg.BranchOrDefault()); err != nil {
		return nil, err
	}

	return open(root, nestDir, cfg, refStore)
}

// Open opens an existing nest rooted at root.
func Open(root string) (*Nest, error) {
	nestDir := filepath.Join(root, DirName)
	if _, err := os.Stat(nestDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewUsageError("not a rat nest (no %s directory found)", DirName)
		}
		return nil, apperrors.NewStorageError("open nest", nestDir, err)
	}

	cfg, err := config.NewManager(nestDir).Load()
	if err != nil {
		return nil, err
	}

	return open(root, nestDir, cfg, refs.NewStore(nestDir))
}

func open(root, nestDir string, cfg *config.Config, refStore *refs.Store) (*Nest, error) {
	idx, err := index.Open(nestDir)
	if err != nil {
		return nil, err
	}

	return &Nest{
		root:    root,
		nestDir: nestDir,
		cfg:     cfg,
		refs:    refStore,
		store:   local.New(nestDir),
		index:   idx,
		log:     logging.WithPrefix("nest"),
	}, nil
}

func (n *Nest) Root() string {
	return n.root
}

func (n *Nest) Config() *config.Config {
	return n.cfg
}

func (n *Nest) Close() error {
	return n.index.Close()
}

// ignored returns the entry names excluded from every tree traversal.
func (n *Nest) ignored() map[string]bool {
	return map[string]bool{DirName: true}
}

// Commit snapshots the working directory as a new commit and advances HEAD.
// The working directory itself is never mutated. The steps are not atomic as
// a group; a crash can leave an orphaned commit object, which is harmless
// under content addressing, but never a corrupted one.
func (n *Nest) Commit(message string) (string, error) {
	release, err := n.acquireLock()
	if err != nil {
		return "", err
	}
	defer release()

	parent, _, err := n.refs.ResolveHead()
	if err != nil {
		return "", err
	}

	commit := &objects.Commit{
		Parent:  parent,
		Message: message,
	}
	metadata := commit.Serialize()

	commit.Hash, err = hashdir.HashCommit(metadata, n.root, n.ignored())
	if err != nil {
		return "", err
	}
	hash := commit.Hash.String()
	n.log.Debug("computed commit hash", "hash", hash, "parent", parent)

	if err := n.store.WriteCommit(commit); err != nil {
		return "", err
	}
	if err := n.store.WriteSnapshot(hash, n.root, n.ignored()); err != nil {
		return "", err
	}
	if err := n.refs.WriteHead(hash); err != nil {
		return "", err
	}

	// The index is derived data; a failure here must not undo a commit that
	// is already durable on disk.
	if err := n.index.Put(commit); err != nil {
		n.log.Warn("commit not indexed", "hash", hash, "error", err)
	}

	n.log.Info("created commit", "hash", hash)
	return hash, nil
}

// Checkout overwrites the working directory with the snapshot of the given
// commit, excluding the nest itself. ref may be a full hash or a unique
// prefix. HEAD is left untouched.
func (n *Nest) Checkout(ref string) (string, error) {
	hash, err := n.resolveCommit(ref)
	if err != nil {
		return "", err
	}

	if err := n.store.RestoreSnapshot(hash, n.root, n.ignored()); err != nil {
		return "", err
	}

	n.log.Info("checked out commit", "hash", hash)
	return hash, nil
}

// CreateBranch creates a branch ref pointing at the commit named by ref,
// which may be a full hash or a unique prefix. The target must name an
// existing commit.
func (n *Nest) CreateBranch(name, ref string) (string, error) {
	release, err := n.acquireLock()
	if err != nil {
		return "", err
	}
	defer release()

	hash, err := n.resolveCommit(ref)
	if err != nil {
		return "", err
	}

	if err := n.refs.CreateBranch(name, hash); err != nil {
		return "", err
	}

	n.log.Info("created branch", "name", name, "hash", hash)
	return hash, nil
}

// Log walks history from HEAD back to the root commit, newest first.
func (n *Nest) Log() ([]history.Entry, error) {
	return history.NewWalker(n.refs, n.store).Walk()
}

// resolveCommit maps a user-supplied commit reference to a full hash. Full
// hashes are checked against the commit namespace directly; shorter strings
// go through the prefix index, rebuilding it once if it is stale.
func (n *Nest) resolveCommit(ref string) (string, error) {
	if len(ref) == fullHashLen {
		if n.store.HasCommit(ref) {
			return ref, nil
		}
		return "", apperrors.UnknownCommitError{Ref: ref}
	}

	hash, err := n.index.ResolvePrefix(ref)
	var unknown apperrors.UnknownCommitError
	if errors.As(err, &unknown) {
		n.log.Debug("prefix miss, rebuilding index", "prefix", ref)
		if err := n.index.Reindex(n.store); err != nil {
			return "", err
		}
		hash, err = n.index.ResolvePrefix(ref)
	}
	if err != nil {
		return "", err
	}

	// The index is advisory; the commit namespace has the final word.
	if !n.store.HasCommit(hash) {
		return "", apperrors.UnknownCommitError{Ref: ref}
	}
	return hash, nil
}

// Status compares the working directory against the HEAD snapshot.
type Status struct {
	Commit    string // resolved HEAD commit, empty on a fresh nest
	Modified  []string
	Untracked []string
	Deleted   []string
}

// Status reports which working-directory files differ from the snapshot HEAD
// points at. Comparison is by per-file checksum; the nest is excluded. On a
// nest with no commits every file is untracked.
func (n *Nest) Status() (*Status, error) {
	ours, err := worktree.ChecksumTree(n.root, n.ignored())
	if err != nil {
		return nil, err
	}

	head, ok, err := n.refs.ResolveHead()
	if err != nil {
		return nil, err
	}

	status := &Status{}
	theirs := map[string]string{}
	if ok {
		status.Commit = head
		theirs, err = worktree.ChecksumTree(n.store.SnapshotPath(head), n.ignored())
		if err != nil {
			return nil, err
		}
	}

	for _, path := range sortedKeys(ours) {
		sum, tracked := theirs[path]
		switch {
		case !tracked:
			status.Untracked = append(status.Untracked, path)
		case sum != ours[path]:
			status.Modified = append(status.Modified, path)
		}
	}
	for _, path := range sortedKeys(theirs) {
		if _, present := ours[path]; !present {
			status.Deleted = append(status.Deleted, path)
		}
	}

	return status, nil
}

func sortedKeys(m map[string]string) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Problem describes one integrity violation found by Verify.
type Problem struct {
	Hash   string
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Hash, p.Reason)
}

// Verify recomputes every commit's content hash from its stored metadata and
// snapshot and checks that parent links resolve. A clean nest yields no
// problems.
func (n *Nest) Verify() ([]Problem, error) {
	hashes, err := n.store.ListCommits()
	if err != nil {
		return nil, err
	}
	slices.Sort(hashes)

	var problems []Problem
	for _, hash := range hashes {
		commit, err := n.store.ReadCommit(hash)
		if err != nil {
			problems = append(problems, Problem{Hash: hash, Reason: "unreadable metadata"})
			continue
		}

		if commit.Parent != "" && !n.store.HasCommit(commit.Parent) {
			problems = append(problems, Problem{Hash: hash, Reason: "dangling parent " + commit.Parent})
		}

		snapDir := n.store.SnapshotPath(hash)
		if _, err := os.Stat(snapDir); err != nil {
			problems = append(problems, Problem{Hash: hash, Reason: "snapshot missing"})
			continue
		}

		recomputed, err := hashdir.HashCommit(commit.Serialize(), snapDir, n.ignored())
		if err != nil {
			problems = append(problems, Problem{Hash: hash, Reason: "snapshot unreadable"})
			continue
		}
		if recomputed.String() != hash {
			problems = append(problems, Problem{Hash: hash, Reason: "content hash mismatch (" + recomputed.String() + ")"})
		}
	}

	return problems, nil
}
