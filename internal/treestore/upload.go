package treestore

import (
	"context"
	"errors"
	"fmt"

	"sanctum/internal/domain/models/library"
)

// ErrTreeChanged is returned when the duplicate the user confirmed is no
// longer the one in the target folder
var ErrTreeChanged = errors.New("folder changed while waiting for confirmation")

// UploadResult reports what UploadFile did
type UploadResult struct {
	ID          string
	Overwritten bool
	Cancelled   bool
}

// UploadFile classifies a file and creates it under parentID. A same-named
// file is overwritten in place, keeping its id, once the Confirmer agrees.
// Unlike the other mutations it returns errors: a node without its upload
// would be meaningless.
func (s *Store) UploadFile(ctx context.Context, parentID, filename string, data []byte) (UploadResult, error) {
	cls := Classify(filename, data)

	s.mu.Lock()
	dup, err := uploadTarget(s.fs, parentID, cls.Name)
	var prompt string
	if err == nil && dup != nil {
		prompt = fmt.Sprintf("'%s' already exists in '%s'. Overwrite?", dup.Name, s.fs[parentID].Name)
	}
	s.mu.Unlock()
	if err != nil {
		return UploadResult{}, err
	}

	dupID := ""
	if dup != nil {
		if !s.confirmer.Confirm(ctx, prompt) {
			return UploadResult{ID: dup.ID, Cancelled: true}, nil
		}
		dupID = dup.ID
	}

	if cls.NeedsUpload {
		if s.uploader == nil {
			return UploadResult{}, ErrNoUploader
		}
		ref, err := s.uploader.Upload(ctx, filename, data)
		if err != nil {
			s.logger.Error("upload failed", "filename", filename, "error", err)
			return UploadResult{}, fmt.Errorf("upload %s: %w", filename, err)
		}
		cls.ExternalRef = ref
	}

	var (
		result UploadResult
		opErr  error
	)
	s.transition(func(t *txn) bool {
		current, err := uploadTarget(t.fs, parentID, cls.Name)
		if err != nil {
			opErr = err
			return false
		}
		currentID := ""
		if current != nil {
			currentID = current.ID
		}
		if currentID != dupID {
			opErr = ErrTreeChanged
			return false
		}

		if current != nil {
			result = UploadResult{ID: current.ID, Overwritten: true}
			s.overwrite(t, current.ID, cls)
			return true
		}

		result = UploadResult{ID: s.newID()}
		pid := parentID
		node := &library.Node{
			ID:         result.ID,
			ParentID:   &pid,
			Name:       cls.Name,
			Kind:       cls.Kind,
			ModifiedAt: t.now,
			Version:    1,
		}
		applyClassification(node, cls)
		t.insert(node)

		created := node.Clone()
		t.remote("upload", node.ID, func(ctx context.Context) error {
			return s.remote.CreateNode(ctx, created)
		})
		return true
	})
	if opErr != nil {
		return UploadResult{}, opErr
	}

	s.logger.Info("file uploaded",
		"node_id", result.ID,
		"kind", cls.Kind,
		"overwritten", result.Overwritten,
	)
	return result, nil
}

func (s *Store) overwrite(t *txn, id string, cls Classification) {
	n := t.edit(id)
	n.Name = cls.Name
	n.Kind = cls.Kind
	applyClassification(n, cls)
	t.touch(n)

	name, kind := n.Name, n.Kind
	patch := &library.NodePatch{Name: &name, Kind: &kind, Version: n.Version}
	if n.Content != nil {
		content := *n.Content
		patch.Content = &content
	}
	if n.ExternalRef != nil {
		ref := *n.ExternalRef
		patch.ExternalRef = &ref
	}
	t.remote("overwrite", id, func(ctx context.Context) error {
		return s.remote.UpdateNode(ctx, id, patch)
	})
}

// applyClassification sets the payload fields so only the ones the kind
// carries are present
func applyClassification(n *library.Node, cls Classification) {
	n.Content = nil
	n.ExternalRef = nil
	if cls.Kind.HasContent() {
		content := cls.Content
		n.Content = &content
	}
	if cls.Kind.HasExternalRef() {
		ref := cls.ExternalRef
		n.ExternalRef = &ref
	}
}

func uploadTarget(fs library.FileSystem, parentID, name string) (*library.Node, error) {
	parent, ok := fs[parentID]
	if !ok || !parent.IsFolder() {
		return nil, ErrInvalidParent
	}
	dup := fs.ChildByName(parentID, name)
	if dup != nil && dup.IsFolder() {
		return nil, ErrFolderNameTaken
	}
	return dup, nil
}
