// SPDX-License-Identifier: MPL-2.0

package closure

import (
	"slices"

	"golang.org/x/exp/maps"
)

const (
	// OriginControlled marks a library found under the package-manager prefix.
	OriginControlled Origin = iota
	// OriginSystem marks a library under a system root.
	OriginSystem
	// OriginUnresolved marks a reference that could not be found on disk.
	OriginUnresolved
)

const (
	// StatusPending is the initial state; unresolved nodes stay pending.
	StatusPending CopyStatus = iota
	// StatusCopied means the file bytes are in the output directory.
	StatusCopied
	// StatusSkipped means the library was classified as system and left out.
	StatusSkipped
)

type (
	// Origin classifies where a library comes from.
	Origin int

	// CopyStatus tracks a library through one run.
	CopyStatus int

	// LibraryNode is one library discovered during the walk.
	LibraryNode struct {
		// Name is the filename, used as the dedup key.
		Name string
		// Path is the path as referenced or resolved by search.
		Path string
		// Resolved is Path with symlinks followed.
		Resolved string
		Origin   Origin
		Status   CopyStatus
	}

	// OutputSet maps filenames to their nodes for a single run.
	// It is owned by a Builder; callers only read it.
	OutputSet struct {
		dir   string
		nodes map[string]*LibraryNode
	}
)

func (o Origin) String() string {
	switch o {
	case OriginControlled:
		return "controlled"
	case OriginSystem:
		return "system"
	case OriginUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

func (s CopyStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCopied:
		return "copied"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

func newOutputSet(dir string) *OutputSet {
	return &OutputSet{dir: dir, nodes: make(map[string]*LibraryNode)}
}

// Dir returns the output directory the set was materialized into.
func (s *OutputSet) Dir() string { return s.dir }

// Len returns the number of distinct filenames seen, in any status.
func (s *OutputSet) Len() int { return len(s.nodes) }

// Node returns a copy of the node recorded for name.
func (s *OutputSet) Node(name string) (LibraryNode, bool) {
	n, ok := s.nodes[name]
	if !ok {
		return LibraryNode{}, false
	}
	return *n, true
}

// Status returns the copy status of name, or StatusPending if never seen.
func (s *OutputSet) Status(name string) CopyStatus {
	if n, ok := s.nodes[name]; ok {
		return n.Status
	}
	return StatusPending
}

// Copied returns the sorted filenames that were written to the output directory.
func (s *OutputSet) Copied() []string {
	return s.filter(func(n *LibraryNode) bool { return n.Status == StatusCopied })
}

// Skipped returns the sorted filenames classified as system libraries.
func (s *OutputSet) Skipped() []string {
	return s.filter(func(n *LibraryNode) bool { return n.Status == StatusSkipped })
}

// Unresolved returns the sorted filenames that could not be found.
func (s *OutputSet) Unresolved() []string {
	return s.filter(func(n *LibraryNode) bool { return n.Origin == OriginUnresolved })
}

func (s *OutputSet) filter(keep func(*LibraryNode) bool) []string {
	names := maps.Keys(s.nodes)
	slices.Sort(names)

	var out []string
	for _, name := range names {
		if keep(s.nodes[name]) {
			out = append(out, name)
		}
	}
	return out
}

// record stores n unless its name is already copied; first copy wins.
func (s *OutputSet) record(n *LibraryNode) {
	if existing, ok := s.nodes[n.Name]; ok && existing.Status == StatusCopied {
		return
	}
	s.nodes[n.Name] = n
}
