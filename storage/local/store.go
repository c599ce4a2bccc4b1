package local

import (
	"errors"
	"os"
	"path/filepath"

	"rat/core/apperrors"
	"rat/core/objects"
	"rat/core/worktree"
)

// Store persists commit metadata and tree snapshots under the nest directory,
// both keyed by the commit's content hash. Objects are immutable once
// written; rewriting the same hash rewrites identical bytes, so no existence
// check is needed before a write.
type Store struct {
	nestDir string
}

func New(nestDir string) *Store {
	return &Store{nestDir: nestDir}
}

func (s *Store) commitsDir() string {
	return filepath.Join(s.nestDir, "commits")
}

// CommitPath returns the metadata file path for a commit hash.
func (s *Store) CommitPath(hash string) string {
	return filepath.Join(s.commitsDir(), hash)
}

// SnapshotPath returns the snapshot directory path for a commit hash.
func (s *Store) SnapshotPath(hash string) string {
	return filepath.Join(s.nestDir, "contents", hash)
}

// WriteCommit persists a commit's metadata under its hash.
func (s *Store) WriteCommit(c *objects.Commit) error {
	path := s.CommitPath(c.Hash.String())
	if err := os.WriteFile(path, c.Serialize(), 0644); err != nil {
		return apperrors.NewStorageError("write commit", path, err)
	}
	return nil
}

// ReadCommit loads and parses the metadata for a commit hash. A missing file
// surfaces as a StorageError wrapping os.ErrNotExist; unparseable metadata is
// corruption.
func (s *Store) ReadCommit(hash string) (*objects.Commit, error) {
	path := s.CommitPath(hash)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("read commit", path, err)
	}

	c, err := objects.ParseCommit(data)
	if err != nil {
		return nil, apperrors.NewCorruptHistoryError(hash, "unparseable metadata", err)
	}

	if c.Hash, err = objects.ParseHash(hash); err != nil {
		return nil, apperrors.NewCorruptHistoryError(hash, "invalid commit name", err)
	}

	return c, nil
}

// HasCommit reports whether a commit exists in the commit namespace.
func (s *Store) HasCommit(hash string) bool {
	_, err := os.Stat(s.CommitPath(hash))
	return err == nil
}

// ListCommits returns every commit hash present in the commit namespace.
func (s *Store) ListCommits() ([]string, error) {
	entries, err := os.ReadDir(s.commitsDir())
	if err != nil {
		return nil, apperrors.NewStorageError("list commits", s.commitsDir(), err)
	}

	hashes := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		hashes = append(hashes, entry.Name())
	}
	return hashes, nil
}

// WriteSnapshot copies the working directory into the snapshot namespace
// under the commit hash, excluding the ignored entry names at every level.
func (s *Store) WriteSnapshot(hash, workingDir string, ignore map[string]bool) error {
	return worktree.CopyDir(workingDir, s.SnapshotPath(hash), ignore)
}

// RestoreSnapshot copies a stored snapshot back onto the working directory.
// Files present in the working directory but absent from the snapshot are
// left in place; only the snapshot's files are overwritten.
func (s *Store) RestoreSnapshot(hash, workingDir string, ignore map[string]bool) error {
	snapDir := s.SnapshotPath(hash)
	if _, err := os.Stat(snapDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.NewCorruptHistoryError(hash, "snapshot missing", err)
		}
		return apperrors.NewStorageError("restore snapshot", snapDir, err)
	}
	return worktree.CopyDir(snapDir, workingDir, ignore)
}

// IsNotExist reports whether err means a commit object was absent, as
// opposed to any other storage failure.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
