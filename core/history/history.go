package history

import (
	"rat/core/apperrors"
	"rat/core/refs"
	"rat/storage/local"
)

// Entry is one commit in the log, paired with the branch names currently
// pointing at it.
type Entry struct {
	Hash     string
	Message  string
	Branches []string
}

// Walker traverses history backwards from HEAD.
type Walker struct {
	refs  *refs.Store
	store *local.Store
}

func NewWalker(refStore *refs.Store, store *local.Store) *Walker {
	return &Walker{
		refs:  refStore,
		store: store,
	}
}

// Walk resolves HEAD and follows parent pointers to the root, newest first.
// An unresolvable HEAD (fresh nest) yields an empty sequence. A referenced
// commit whose metadata is missing is corruption and aborts the walk; silent
// truncation would make the result unsound.
func (w *Walker) Walk() ([]Entry, error) {
	start, ok, err := w.refs.ResolveHead()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	index, err := w.refs.Index()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for hash := start; hash != ""; {
		commit, err := w.store.ReadCommit(hash)
		if err != nil {
			if local.IsNotExist(err) {
				return nil, apperrors.NewCorruptHistoryError(hash, "commit object missing", err)
			}
			return nil, err
		}

		entries = append(entries, Entry{
			Hash:     hash,
			Message:  commit.Message,
			Branches: index[hash],
		})
		hash = commit.Parent
	}

	return entries, nil
}
