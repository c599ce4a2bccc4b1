package nest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"rat/core/apperrors"
)

// EditMessage collects a commit message by running the user's editor on the
// nest's COMMIT_EDITMSG file and reading it back. The editor comes from the
// nest config, then EDITOR, then VISUAL. A blank or whitespace-only result
// means the user cancelled the commit.
func (n *Nest) EditMessage() (string, error) {
	path := filepath.Join(n.nestDir, "COMMIT_EDITMSG")

	// Empty the file first so a stale message from an earlier commit is
	// never picked up.
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return "", apperrors.NewStorageError("prepare commit message", path, err)
	}

	editor := n.cfg.Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return "", apperrors.NoEditorError{}
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", apperrors.NewStorageError("run editor", editor, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.NewStorageError("read commit message", path, err)
	}

	message := string(data)
	if strings.TrimSpace(message) == "" {
		return "", apperrors.EmptyMessageError{}
	}
	return message, nil
}
