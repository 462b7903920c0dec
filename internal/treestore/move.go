package treestore

import (
	"context"
	"fmt"

	"sanctum/internal/domain/models/library"
)

// MoveNode reparents id under targetFolderID. A same-named node already in
// the target is replaced, subtree and all, but only after the Confirmer
// agrees. It reports false when the move is invalid, declined, or the tree
// changed underneath the question.
func (s *Store) MoveNode(ctx context.Context, id, targetFolderID string) bool {
	s.mu.Lock()
	dup, ok := s.planMove(s.fs, id, targetFolderID)
	var prompt string
	if ok && dup != nil {
		prompt = fmt.Sprintf("'%s' already contains '%s'. Overwrite?", s.fs[targetFolderID].Name, dup.Name)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	dupID := ""
	if dup != nil {
		if !s.confirmer.Confirm(ctx, prompt) {
			s.logger.Debug("move declined", "node_id", id, "target_id", targetFolderID)
			return false
		}
		dupID = dup.ID
	}

	return s.transition(func(t *txn) bool {
		current, ok := s.planMove(t.fs, id, targetFolderID)
		if !ok {
			return false
		}
		// The answer only covers the node the user was asked about
		currentID := ""
		if current != nil {
			currentID = current.ID
		}
		if currentID != dupID {
			return false
		}

		if current != nil {
			t.removeSubtree(current.ID)
			t.remote("delete", current.ID, func(ctx context.Context) error {
				return s.remote.DeleteNode(ctx, current.ID)
			})
		}

		t.unlink(id)
		target := t.edit(targetFolderID)
		target.Children = append(target.Children, id)

		n := t.edit(id)
		parent := targetFolderID
		n.ParentID = &parent
		t.touch(n)

		patch := &library.NodePatch{ParentID: &parent, Version: n.Version}
		t.remote("move", id, func(ctx context.Context) error {
			return s.remote.UpdateNode(ctx, id, patch)
		})
		return true
	})
}

// planMove checks a move against fs and returns the same-named node in the
// target, if any.
func (s *Store) planMove(fs library.FileSystem, id, targetFolderID string) (*library.Node, bool) {
	if id == targetFolderID {
		return nil, false
	}
	n, ok := fs[id]
	if !ok || n.IsRoot() {
		return nil, false
	}
	target, ok := fs[targetFolderID]
	if !ok || !target.IsFolder() {
		return nil, false
	}
	if *n.ParentID == targetFolderID {
		return nil, false
	}
	if fs.IsAncestor(id, targetFolderID) {
		s.logger.Debug("move rejected: target inside moved node", "node_id", id, "target_id", targetFolderID)
		return nil, false
	}

	dup := fs.ChildByName(targetFolderID, n.Name)
	if dup == nil {
		return nil, true
	}
	// Replacing an ancestor would delete the node being moved
	if fs.IsAncestor(dup.ID, id) {
		return nil, false
	}
	return dup, true
}
