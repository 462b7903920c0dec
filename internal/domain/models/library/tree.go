package library

import (
	"sort"
	"strings"
)

// BuildFileSystem assembles a FileSystem from flat rows, deriving every folder's
// Children by grouping on ParentID. Rows are expected in insertion order; that
// order is kept within each folder. Rows whose parent is missing are kept in the
// mapping but are not reachable from the root.
func BuildFileSystem(nodes []*Node) FileSystem {
	fs := make(FileSystem, len(nodes))

	// First pass: index every node and reset derived fields
	for _, n := range nodes {
		if n.Kind == KindFolder {
			n.Children = []string{}
		} else {
			n.Children = nil
		}
		n.Expanded = n.ID == RootID
		fs[n.ID] = n
	}

	// Second pass: attach children to their folders
	for _, n := range nodes {
		if n.ParentID == nil {
			continue
		}
		parent, ok := fs[*n.ParentID]
		if !ok || !parent.IsFolder() {
			continue
		}
		parent.Children = append(parent.Children, n.ID)
	}

	return fs
}

// Descendants returns the ids of every transitive descendant of id (not
// including id itself). Traversal uses an explicit work list.
func (fs FileSystem) Descendants(id string) []string {
	var out []string
	start, ok := fs[id]
	if !ok {
		return nil
	}
	stack := append([]string(nil), start.Children...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := fs[cur]
		if !ok {
			continue
		}
		out = append(out, cur)
		stack = append(stack, n.Children...)
	}
	return out
}

// IsAncestor reports whether ancestorID appears on the parent chain of id.
// A node is not its own ancestor.
func (fs FileSystem) IsAncestor(ancestorID, id string) bool {
	seen := make(map[string]bool)
	n, ok := fs[id]
	for ok && n.ParentID != nil {
		pid := *n.ParentID
		if pid == ancestorID {
			return true
		}
		if seen[pid] {
			return false
		}
		seen[pid] = true
		n, ok = fs[pid]
	}
	return false
}

// Path returns the names from the root's first child down to id, joined by "/".
func (fs FileSystem) Path(id string) string {
	var parts []string
	n, ok := fs[id]
	for ok && n.ParentID != nil && len(parts) <= len(fs) {
		parts = append(parts, n.Name)
		n, ok = fs[*n.ParentID]
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// ChildByName returns the first child of folderID named name, or nil.
func (fs FileSystem) ChildByName(folderID, name string) *Node {
	folder, ok := fs[folderID]
	if !ok {
		return nil
	}
	for _, cid := range folder.Children {
		if c, ok := fs[cid]; ok && c.Name == name {
			return c
		}
	}
	return nil
}

// SortedIDs returns all ids in lexical order. Useful for deterministic output.
func (fs FileSystem) SortedIDs() []string {
	ids := make([]string, 0, len(fs))
	for id := range fs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
