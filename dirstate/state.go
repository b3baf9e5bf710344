// package dirstate records a snapshot of a working tree as compact tuple
// keys. Every entry holds two interned pairs: the (dirname, basename) path
// key and the (file-id, revision-id) identity, so snapshots of large trees
// share one instance per distinct key.
package dirstate

import (
	"path"
	"slices"

	"github.com/breezy-team/breezy-sub003/compact"
)

// Entry is one file in a State.
type Entry struct {
	Key  *compact.Tuple // (dirname, basename)
	ID   *compact.Tuple // (file-id, revision-id)
	Size int64
}

// Path returns the slash separated path of the entry relative to the root.
func (e Entry) Path() string {
	dir, _ := e.Key.Text(0)
	base, _ := e.Key.Text(1)
	return path.Join(dir, base)
}

// FileID returns the file id half of the identity.
func (e Entry) FileID() string {
	s, _ := e.ID.Text(0)
	return s
}

// Revision returns the content digest half of the identity.
func (e Entry) Revision() string {
	s, _ := e.ID.Text(1)
	return s
}

// State is an immutable snapshot of a tree. Entries are sorted by Key. A
// State holds a reference to every tuple it contains until Release.
type State struct {
	root    string
	entries []Entry
}

// Stats summarizes a State.
type Stats struct {
	Files int
	Dirs  int
	Bytes int64
}

// Root returns the directory the state was scanned from.
func (s *State) Root() string { return s.root }

// Len returns the number of entries.
func (s *State) Len() int { return len(s.entries) }

// Entries returns the entries sorted by key. The slice must not be modified.
func (s *State) Entries() []Entry { return s.entries }

// Find returns the entry for the file base in directory dir. Use "" for
// files at the root.
func (s *State) Find(dir, base string) (Entry, bool) {
	// every key held by the state is interned, so a missing canonical
	// instance means a missing entry
	key, ok := compact.Lookup(dir, base)
	if !ok {
		return Entry{}, false
	}
	defer key.Release()

	i, ok := slices.BinarySearchFunc(s.entries, key, func(e Entry, k *compact.Tuple) int {
		return compact.Compare(e.Key, k)
	})
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Dirs returns the distinct directory names holding at least one entry, in
// sorted order.
func (s *State) Dirs() []string {
	var dirs []string
	for _, e := range s.entries {
		dir, _ := e.Key.Text(0)
		if len(dirs) == 0 || dirs[len(dirs)-1] != dir {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Stats returns counts over the entries.
func (s *State) Stats() Stats {
	st := Stats{Files: len(s.entries), Dirs: len(s.Dirs())}
	for _, e := range s.entries {
		st.Bytes += e.Size
	}
	return st
}

// Release drops the references the state holds. The state is empty after.
func (s *State) Release() {
	for _, e := range s.entries {
		e.Key.Release()
		e.ID.Release()
	}
	s.entries = nil
}
