package nest

import (
	"errors"
	"os"
	"path/filepath"

	"rat/core/apperrors"
)

// acquireLock takes the nest's single-writer lock, serializing commit and
// branch creation against other processes on the same nest. The lock is a
// file created with O_EXCL and removed by the returned release func. A stale
// lock after a crash must be removed by hand; the error says which file.
func (n *Nest) acquireLock() (release func(), err error) {
	path := filepath.Join(n.nestDir, "LOCK")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, apperrors.NewUsageError("nest is locked by another process (remove %s if stale)", path)
		}
		return nil, apperrors.NewStorageError("acquire lock", path, err)
	}
	f.Close()

	return func() {
		if err := os.Remove(path); err != nil {
			n.log.Warn("failed to release lock", "path", path, "error", err)
		}
	}, nil
}
