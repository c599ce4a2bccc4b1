package index

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"rat/core/apperrors"
	"rat/core/objects"
	"rat/storage/local"
)

// Index is a derived sqlite catalog of the commit namespace. The commits
// directory stays authoritative; the index only serves hash-prefix
// resolution and can be rebuilt from disk at any time.
type Index struct {
	db *sql.DB
	mu sync.Mutex // serializes writes
}

func Open(nestDir string) (*Index, error) {
	indexPath := filepath.Join(nestDir, "index.db")

	db, err := sql.Open("sqlite", indexPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, apperrors.NewStorageError("open index", indexPath, err)
	}

	idx := &Index{db: db}
	if err := idx.initialize(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("initialize index", indexPath, err)
	}

	return idx, nil
}

func (idx *Index) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commits (
		hash TEXT PRIMARY KEY,
		parent TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_commits_parent ON commits(parent);
	`

	_, err := idx.db.Exec(schema)
	return err
}

// Put records a commit in the index.
func (idx *Index) Put(c *objects.Commit) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO commits (hash, parent, message, created_at)
		VALUES (?, ?, ?, ?)`,
		c.Hash.String(), c.Parent, c.Message, time.Now().Unix())
	if err != nil {
		return apperrors.NewStorageError("index commit", c.Hash.String(), err)
	}
	return nil
}

// ResolvePrefix expands a hash prefix to the full commit hash. No match
// yields UnknownCommitError, more than one yields AmbiguousRefError.
func (idx *Index) ResolvePrefix(prefix string) (string, error) {
	rows, err := idx.db.Query(`
		SELECT hash FROM commits
		WHERE hash LIKE ? || '%'
		LIMIT 2`, prefix)
	if err != nil {
		return "", apperrors.NewStorageError("resolve prefix", prefix, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return "", apperrors.NewStorageError("resolve prefix", prefix, err)
		}
		matches = append(matches, hash)
	}
	if err := rows.Err(); err != nil {
		return "", apperrors.NewStorageError("resolve prefix", prefix, err)
	}

	switch len(matches) {
	case 0:
		return "", apperrors.UnknownCommitError{Ref: prefix}
	case 1:
		return matches[0], nil
	default:
		return "", apperrors.AmbiguousRefError{Prefix: prefix, Matches: len(matches)}
	}
}

// Reindex rebuilds the catalog from the commit namespace. Used when the
// index file was deleted or written by an older version.
func (idx *Index) Reindex(store *local.Store) error {
	hashes, err := store.ListCommits()
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return apperrors.NewStorageError("reindex", "", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM commits`); err != nil {
		return apperrors.NewStorageError("reindex", "", err)
	}

	now := time.Now().Unix()
	for _, hash := range hashes {
		c, err := store.ReadCommit(hash)
		if err != nil {
			// Unparseable objects stay out of the index; verify reports them.
			var corrupt apperrors.CorruptHistoryError
			if errors.As(err, &corrupt) {
				continue
			}
			return err
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO commits (hash, parent, message, created_at)
			VALUES (?, ?, ?, ?)`,
			hash, c.Parent, c.Message, now); err != nil {
			return apperrors.NewStorageError("reindex", hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("reindex", "", err)
	}
	return nil
}

func (idx *Index) Close() error {
	return idx.db.Close()
}
