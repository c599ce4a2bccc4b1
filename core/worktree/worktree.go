package worktree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"rat/core/apperrors"
)

// CopyDir recursively copies the contents of from into to, skipping entries
// named in ignore at every recursion level. Symlinks are not given special
// treatment; anything that is not a directory is copied as a file.
func CopyDir(from, to string, ignore map[string]bool) error {
	entries, err := os.ReadDir(from)
	if err != nil {
		return apperrors.NewStorageError("copy directory", from, err)
	}

	if err := os.MkdirAll(to, 0755); err != nil {
		return apperrors.NewStorageError("copy directory", to, err)
	}

	for _, entry := range entries {
		if ignore[entry.Name()] {
			continue
		}

		src := filepath.Join(from, entry.Name())
		dst := filepath.Join(to, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(src, dst, ignore); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(src, dst); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return apperrors.NewStorageError("copy file", src, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return apperrors.NewStorageError("copy file", dst, err)
	}
	return nil
}

// ChecksumTree walks dir and returns a slash-separated relative path to
// xxh3-128 checksum mapping for every file, skipping ignored entry names at
// every level. The checksums are only used for change detection, never for
// content addressing.
func ChecksumTree(dir string, ignore map[string]bool) (map[string]string, error) {
	sums := make(map[string]string)
	if err := checksumTree(dir, "", ignore, sums); err != nil {
		return nil, err
	}
	return sums, nil
}

func checksumTree(dir, rel string, ignore map[string]bool, sums map[string]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperrors.NewStorageError("checksum directory", dir, err)
	}

	for _, entry := range entries {
		if ignore[entry.Name()] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		relPath := entry.Name()
		if rel != "" {
			relPath = rel + "/" + entry.Name()
		}

		if entry.IsDir() {
			if err := checksumTree(path, relPath, ignore, sums); err != nil {
				return err
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return apperrors.NewStorageError("checksum file", path, err)
		}
		sums[relPath] = fmt.Sprintf("%x", xxh3.Hash128(data).Bytes())
	}

	return nil
}
