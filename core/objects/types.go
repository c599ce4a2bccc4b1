package objects

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

type Hash [32]byte

func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash decodes a lowercase-hex commit hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %v", s, err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("invalid hash length: %d", len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func NewHash(data []byte) Hash {
	return sha256.Sum256(data)
}

// Commit is the metadata half of a snapshot. The tree itself lives out of
// band under the commit's hash in the contents namespace.
type Commit struct {
	Hash    Hash   // identity, computed over metadata plus tree, never stored inline
	Parent  string // hex hash of the predecessor, empty for the root commit
	Message string
}

// Serialize renders the metadata exactly as stored in the commit namespace:
// a "parent <hash>" header, a blank line, then the message verbatim.
func (c *Commit) Serialize() []byte {
	return []byte(fmt.Sprintf("parent %s\n\n%s", c.Parent, c.Message))
}

// ParseCommit is the inverse of Serialize. The message is preserved byte for
// byte, embedded newlines included.
func ParseCommit(data []byte) (*Commit, error) {
	header, message, found := strings.Cut(string(data), "\n\n")
	if !found {
		return nil, fmt.Errorf("missing blank line after metadata header")
	}

	parent, ok := strings.CutPrefix(header, "parent ")
	if !ok {
		return nil, fmt.Errorf("malformed metadata header %q", header)
	}

	return &Commit{
		Parent:  strings.TrimSpace(parent),
		Message: message,
	}, nil
}
