package treestore

import (
	"context"
	"time"

	"sanctum/internal/domain/models/library"
)

// DefaultImportName names imported records that arrive without one
const DefaultImportName = "Untitled"

// ImportItem is a partial record for ImportBatch. Zero fields take defaults.
type ImportItem struct {
	Name        string
	Kind        library.Kind
	Content     string
	ExternalRef string
}

// CreateNode adds a node of kind under parentID and selects it. Folders
// start empty and expanded; documents start from DefaultMarkdownContent.
// It reports false, with no change, when parentID is not a folder.
func (s *Store) CreateNode(parentID string, kind library.Kind, name string) (string, bool) {
	if !kind.Valid() || name == "" {
		return "", false
	}

	id := s.newID()
	ok := s.transition(func(t *txn) bool {
		parent, exists := t.fs[parentID]
		if !exists || !parent.IsFolder() {
			return false
		}

		pid := parentID
		node := &library.Node{
			ID:         id,
			ParentID:   &pid,
			Name:       name,
			Kind:       kind,
			ModifiedAt: t.now,
			Version:    1,
		}
		switch {
		case kind == library.KindFolder:
			node.Children = []string{}
			node.Expanded = true
		case kind.HasContent():
			content := DefaultMarkdownContent
			node.Content = &content
		}

		t.insert(node)
		t.selected = id

		created := node.Clone()
		t.remote("create", id, func(ctx context.Context) error {
			return s.remote.CreateNode(ctx, created)
		})
		return true
	})
	if !ok {
		return "", false
	}
	return id, true
}

// DeleteNode removes id and its whole subtree and clears the selection.
// The remote is asked to delete only id; it cascades on its side.
func (s *Store) DeleteNode(id string) bool {
	return s.transition(func(t *txn) bool {
		n, ok := t.fs[id]
		if !ok || n.IsRoot() || id == library.RootID {
			return false
		}

		t.removeSubtree(id)
		t.selected = ""

		t.remote("delete", id, func(ctx context.Context) error {
			return s.remote.DeleteNode(ctx, id)
		})
		return true
	})
}

// RenameNode sets a node's name. Unlike move and upload it does not check
// for a same-named sibling.
func (s *Store) RenameNode(id, newName string) bool {
	if newName == "" {
		return false
	}

	return s.transition(func(t *txn) bool {
		if _, ok := t.fs[id]; !ok {
			return false
		}

		n := t.edit(id)
		n.Name = newName
		t.touch(n)

		patch := &library.NodePatch{Name: &newName, Version: n.Version}
		t.remote("rename", id, func(ctx context.Context) error {
			return s.remote.UpdateNode(ctx, id, patch)
		})
		return true
	})
}

// UpdateContent replaces a document's text. Every call is sent to the
// remote; callers that save on keystrokes should debounce.
func (s *Store) UpdateContent(id, text string) bool {
	return s.transition(func(t *txn) bool {
		n, ok := t.fs[id]
		if !ok || !n.Kind.HasContent() {
			return false
		}

		edited := t.edit(id)
		edited.Content = &text
		t.touch(edited)

		patch := &library.NodePatch{Content: &text, Version: edited.Version}
		t.remote("update_content", id, func(ctx context.Context) error {
			return s.remote.UpdateNode(ctx, id, patch)
		})
		return true
	})
}

// ImportBatch creates every item directly under the root, in input order,
// as one transition. Remote creates are issued one per item; a failed one
// is logged and the rest still go out.
func (s *Store) ImportBatch(items []ImportItem) []string {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = s.newID()
	}

	ok := s.transition(func(t *txn) bool {
		root := t.fs.Root()
		if root == nil || !root.IsFolder() {
			return false
		}

		for i, item := range items {
			node := importedNode(ids[i], item, t.now)
			t.insert(node)

			created := node.Clone()
			t.remote("import", node.ID, func(ctx context.Context) error {
				return s.remote.CreateNode(ctx, created)
			})
		}
		return true
	})
	if !ok {
		return nil
	}
	return ids
}

func importedNode(id string, item ImportItem, now time.Time) *library.Node {
	kind := item.Kind
	if !kind.Valid() {
		kind = library.KindMarkdown
	}
	name := item.Name
	if name == "" {
		name = DefaultImportName
	}

	root := library.RootID
	node := &library.Node{
		ID:         id,
		ParentID:   &root,
		Name:       name,
		Kind:       kind,
		ModifiedAt: now,
		Version:    1,
	}
	switch {
	case kind == library.KindFolder:
		node.Children = []string{}
	case kind.HasContent():
		content := item.Content
		node.Content = &content
	case kind.HasExternalRef():
		ref := item.ExternalRef
		node.ExternalRef = &ref
	}
	return node
}
