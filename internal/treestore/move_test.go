package treestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctum/internal/domain/models/library"
)

// nestedTree adds a second level under F1 and a same-named document in F2:
//
//	root
//	├── F1/
//	│   ├── D1 notes.md
//	│   └── F3/
//	│       └── D3 deep.md
//	└── F2/
//	    └── B notes.md
func nestedTree() library.FileSystem {
	return library.BuildFileSystem([]*library.Node{
		node(library.RootID, "", library.KindFolder, "My Library"),
		node("F1", library.RootID, library.KindFolder, "F1"),
		node("D1", "F1", library.KindMarkdown, "notes.md"),
		node("F3", "F1", library.KindFolder, "F3"),
		node("D3", "F3", library.KindMarkdown, "deep.md"),
		node("F2", library.RootID, library.KindFolder, "F2"),
		node("B", "F2", library.KindMarkdown, "notes.md"),
	})
}

func TestMoveNode_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		target string
	}{
		{"into itself", "F1", "F1"},
		{"into own child", "F1", "F3"},
		{"root into a descendant", library.RootID, "F3"},
		{"root", library.RootID, "F2"},
		{"into a document", "D3", "D1"},
		{"missing node", "ghost", "F2"},
		{"missing target", "D1", "ghost"},
		{"same parent", "D1", "F1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nestedTree())
			before := env.store.Snapshot()

			assert.False(t, env.store.MoveNode(context.Background(), tt.id, tt.target))
			assert.Equal(t, before, env.store.Snapshot())
			assert.Empty(t, env.confirmer.prompts)

			env.flush(t)
			assert.Empty(t, env.remote.Calls())
		})
	}
}

func TestMoveNode_Plain(t *testing.T) {
	env := newTestEnv(t, nestedTree())

	require.True(t, env.store.MoveNode(context.Background(), "F3", "F2"))

	fs := env.store.Snapshot()
	checkWellFormed(t, fs)
	assert.Equal(t, []string{"D1"}, fs["F1"].Children)
	assert.Equal(t, []string{"B", "F3"}, fs["F2"].Children)
	assert.Equal(t, "F2", *fs["F3"].ParentID)
	assert.Equal(t, int64(2), fs["F3"].Version)
	assert.Equal(t, fixedNow, fs["F3"].ModifiedAt)
	assert.Equal(t, "F3", *fs["D3"].ParentID)

	env.flush(t)
	calls := env.remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, &library.NodePatch{ParentID: strPtr("F2"), Version: 2}, calls[0].Patch)
}

func TestMoveNode_ReplacesDuplicate(t *testing.T) {
	fs := nestedTree()
	// Give the duplicate a subtree of its own
	fs = library.BuildFileSystem([]*library.Node{
		fs[library.RootID], fs["F1"], fs["D1"], fs["F3"], fs["D3"], fs["F2"],
		node("B", "F2", library.KindFolder, "F3"),
		node("B1", "B", library.KindMarkdown, "inner.md"),
	})
	env := newTestEnv(t, fs)

	require.True(t, env.store.MoveNode(context.Background(), "F3", "F2"))
	require.Len(t, env.confirmer.prompts, 1)
	assert.Equal(t, "'F2' already contains 'F3'. Overwrite?", env.confirmer.prompts[0])

	got := env.store.Snapshot()
	checkWellFormed(t, got)
	assert.NotContains(t, got, "B")
	assert.NotContains(t, got, "B1")
	assert.Equal(t, []string{"F3"}, got["F2"].Children)
	assert.Equal(t, "F2", *got["F3"].ParentID)
	assert.Contains(t, got, "D3")

	env.flush(t)
	assert.Equal(t, []string{"delete B", "update F3"}, env.remote.OpsAndIDs())
}

func TestMoveNode_DuplicateDeclined(t *testing.T) {
	env := newTestEnv(t, nestedTree())
	env.confirmer.answer = false
	before := env.store.Snapshot()

	assert.False(t, env.store.MoveNode(context.Background(), "D1", "F2"))
	assert.Len(t, env.confirmer.prompts, 1)
	assert.Equal(t, before, env.store.Snapshot())

	env.flush(t)
	assert.Empty(t, env.remote.Calls())
}

func TestMoveNode_DuplicateIsAncestor(t *testing.T) {
	// Moving D3 up into root would replace F1, which holds D3
	fs := nestedTree()
	fs = library.BuildFileSystem([]*library.Node{
		fs[library.RootID], fs["F1"], fs["D1"], fs["F3"],
		node("D3", "F3", library.KindMarkdown, "F1"),
		fs["F2"], fs["B"],
	})
	env := newTestEnv(t, fs)

	assert.False(t, env.store.MoveNode(context.Background(), "D3", library.RootID))
	assert.Empty(t, env.confirmer.prompts)
	checkWellFormed(t, env.store.Snapshot())
}

func TestMoveNode_TreeChangedDuringConfirm(t *testing.T) {
	env := newTestEnv(t, nestedTree())
	env.store.confirmer = ConfirmFunc(func(context.Context, string) bool {
		// Someone renames the duplicate while the question is open
		env.store.RenameNode("B", "other.md")
		return true
	})

	assert.False(t, env.store.MoveNode(context.Background(), "D1", "F2"))

	fs := env.store.Snapshot()
	checkWellFormed(t, fs)
	assert.Contains(t, fs, "B")
	assert.Equal(t, "F1", *fs["D1"].ParentID)
}
