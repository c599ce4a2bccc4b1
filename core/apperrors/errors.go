package apperrors

import (
	"fmt"
)

// UsageError reports invalid command-line usage: a missing argument or an
// unrecognized subcommand. Nothing has been changed when one is returned.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string {
	return e.Message
}

// StorageError represents a filesystem read/write failure inside the nest or
// the working directory. Filesystem errors are treated as non-transient in
// this tool, so callers never retry.
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error during %s at %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("storage error during %s at %s", e.Operation, e.Path)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

// CorruptHistoryError indicates that the commit graph references data that is
// missing or unreadable: a ref names a commit with no metadata file, or the
// metadata fails to parse. Kept distinct from StorageError because it means
// the nest itself is damaged rather than the environment failing.
type CorruptHistoryError struct {
	Hash   string
	Reason string
	Err    error
}

func (e CorruptHistoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt history at commit %s: %s: %v", e.Hash, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt history at commit %s: %s", e.Hash, e.Reason)
}

func (e CorruptHistoryError) Unwrap() error {
	return e.Err
}

// BranchExistsError is returned when creating a branch under a name that is
// already taken. The existing ref is left untouched.
type BranchExistsError struct {
	Name string
}

func (e BranchExistsError) Error() string {
	return fmt.Sprintf("branch %q already exists", e.Name)
}

// UnknownCommitError is returned when a commit reference does not resolve to
// any commit in the nest.
type UnknownCommitError struct {
	Ref string
}

func (e UnknownCommitError) Error() string {
	return fmt.Sprintf("unknown commit %q", e.Ref)
}

// AmbiguousRefError is returned when a hash prefix matches more than one
// commit.
type AmbiguousRefError struct {
	Prefix  string
	Matches int
}

func (e AmbiguousRefError) Error() string {
	return fmt.Sprintf("ambiguous commit prefix %q (%d matches)", e.Prefix, e.Matches)
}

// EmptyMessageError means the user cancelled a commit by leaving the
// editor-collected message blank.
type EmptyMessageError struct{}

func (EmptyMessageError) Error() string {
	return "empty commit message, commit cancelled"
}

// NoEditorError means a commit message had to be collected interactively but
// neither EDITOR nor VISUAL is set.
type NoEditorError struct{}

func (NoEditorError) Error() string {
	return "no editor configured (set EDITOR or VISUAL)"
}

// Helper functions to create errors
func NewUsageError(format string, args ...interface{}) error {
	return UsageError{Message: fmt.Sprintf(format, args...)}
}

func NewStorageError(operation, path string, err error) error {
	return StorageError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

func NewCorruptHistoryError(hash, reason string, err error) error {
	return CorruptHistoryError{
		Hash:   hash,
		Reason: reason,
		Err:    err,
	}
}
