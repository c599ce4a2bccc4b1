package hashdir

import (
	"crypto/sha256"
	"hash"
	"os"
	"path/filepath"

	"rat/core/apperrors"
	"rat/core/objects"
)

// HashDirectory absorbs the raw bytes of every regular file under dir into h,
// recursing into subdirectories. Entries named in ignore are skipped at every
// level. os.ReadDir returns entries sorted by name, which keeps the digest
// independent of filesystem iteration order.
func HashDirectory(h hash.Hash, dir string, ignore map[string]bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperrors.NewStorageError("hash directory", dir, err)
	}

	for _, entry := range entries {
		if ignore[entry.Name()] {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		// Anything that is not a directory is absorbed as a file, matching
		// the snapshotter's view of the tree.
		if entry.IsDir() {
			if err := HashDirectory(h, path, ignore); err != nil {
				return err
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return apperrors.NewStorageError("hash file", path, err)
		}
		h.Write(data)
	}

	return nil
}

// HashCommit computes a commit's content hash: the metadata string first,
// then the directory's file bytes in traversal order. Identical inputs always
// produce the identical hash.
func HashCommit(metadata []byte, dir string, ignore map[string]bool) (objects.Hash, error) {
	h := sha256.New()
	h.Write(metadata)

	if err := HashDirectory(h, dir, ignore); err != nil {
		return objects.Hash{}, err
	}

	var out objects.Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}
