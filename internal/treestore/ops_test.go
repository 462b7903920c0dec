package treestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctum/internal/domain/models/library"
)

func TestCreateNode_DocumentUnderFolder(t *testing.T) {
	env := newTestEnv(t, fixtureTree())
	before := env.store.Snapshot()

	id, ok := env.store.CreateNode("F1", library.KindMarkdown, "new.md")
	require.True(t, ok)
	assert.Equal(t, "n1", id)

	fs := env.store.Snapshot()
	checkWellFormed(t, fs)
	assert.Equal(t, []string{"D1", "n1"}, fs["F1"].Children)
	assert.Len(t, fs.Root().Children, len(before.Root().Children))
	assert.Equal(t, DefaultMarkdownContent, *fs["n1"].Content)
	assert.Equal(t, fixedNow, fs["n1"].ModifiedAt)
	assert.Equal(t, "n1", env.store.Selected())

	// The previous snapshot is untouched
	assert.Equal(t, []string{"D1"}, before["F1"].Children)
	assert.NotContains(t, before, "n1")

	env.flush(t)
	calls := env.remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "create", calls[0].Op)
	assert.Equal(t, "new.md", calls[0].Node.Name)
	assert.Equal(t, "F1", *calls[0].Node.ParentID)
	assert.Equal(t, int64(1), calls[0].Node.Version)
}

func TestCreateNode_Folder(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	id, ok := env.store.CreateNode(library.RootID, library.KindFolder, "Archive")
	require.True(t, ok)

	n, _ := env.store.Node(id)
	assert.Equal(t, []string{}, n.Children)
	assert.True(t, n.Expanded)
	assert.Nil(t, n.Content)
	checkWellFormed(t, env.store.Snapshot())
}

func TestEmptyFolder_KeepsChildrenAfterEdit(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	id, ok := env.store.CreateNode(library.RootID, library.KindFolder, "Archive")
	require.True(t, ok)
	require.True(t, env.store.ToggleExpanded(id))

	n, _ := env.store.Node(id)
	assert.NotNil(t, n.Children)
	assert.Equal(t, []string{}, n.Children)
	assert.NotNil(t, env.store.Snapshot()[id].Children)
	checkWellFormed(t, env.store.Snapshot())
}

func TestCreateNode_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		kind   library.Kind
		label  string
	}{
		{"parent is a document", "D1", library.KindMarkdown, "x.md"},
		{"parent missing", "ghost", library.KindMarkdown, "x.md"},
		{"unknown kind", "F1", library.Kind("SPREADSHEET"), "x"},
		{"empty name", "F1", library.KindFolder, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, fixtureTree())
			before := env.store.Snapshot()

			_, ok := env.store.CreateNode(tt.parent, tt.kind, tt.label)
			assert.False(t, ok)
			assert.Equal(t, before, env.store.Snapshot())

			env.flush(t)
			assert.Empty(t, env.remote.Calls())
		})
	}
}

func TestDeleteNode_RemovesSubtree(t *testing.T) {
	env := newTestEnv(t, fixtureTree())
	require.True(t, env.store.Open("D1"))
	require.Equal(t, "D1", env.store.OpenDocument())

	require.True(t, env.store.DeleteNode("F1"))

	fs := env.store.Snapshot()
	checkWellFormed(t, fs)
	assert.NotContains(t, fs, "F1")
	assert.NotContains(t, fs, "D1")
	assert.Equal(t, []string{"F2"}, fs.Root().Children)
	assert.Empty(t, env.store.Selected())
	assert.Empty(t, env.store.OpenDocument())

	// One remote delete; the remote cascades on its own
	env.flush(t)
	assert.Equal(t, []string{"delete F1"}, env.remote.OpsAndIDs())
}

func TestDeleteNode_Rejected(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	assert.False(t, env.store.DeleteNode(library.RootID))
	assert.False(t, env.store.DeleteNode("ghost"))

	env.flush(t)
	assert.Empty(t, env.remote.Calls())
	assert.Len(t, env.store.Snapshot(), 4)
}

func TestRenameNode(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	require.True(t, env.store.RenameNode("D1", "renamed.md"))

	n, _ := env.store.Node("D1")
	assert.Equal(t, "renamed.md", n.Name)
	assert.Equal(t, fixedNow, n.ModifiedAt)
	assert.Equal(t, int64(2), n.Version)

	// Ancestors are not touched
	f1, _ := env.store.Node("F1")
	assert.Equal(t, int64(1), f1.Version)

	env.flush(t)
	calls := env.remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "update", calls[0].Op)
	assert.Equal(t, &library.NodePatch{Name: strPtr("renamed.md"), Version: 2}, calls[0].Patch)
}

func TestRenameNode_AllowsSiblingDuplicate(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	require.True(t, env.store.RenameNode("F2", "F1"))
	assert.Empty(t, env.confirmer.prompts)
	assert.Len(t, env.store.Snapshot().Root().Children, 2)
}

func TestRenameNode_Rejected(t *testing.T) {
	env := newTestEnv(t, fixtureTree())
	assert.False(t, env.store.RenameNode("D1", ""))
	assert.False(t, env.store.RenameNode("ghost", "x"))
}

func TestUpdateContent(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	require.True(t, env.store.UpdateContent("D1", "# Edited"))
	n, _ := env.store.Node("D1")
	assert.Equal(t, "# Edited", *n.Content)
	assert.Equal(t, int64(2), n.Version)

	assert.False(t, env.store.UpdateContent("F1", "folders have no text"))
	f1, _ := env.store.Node("F1")
	assert.Nil(t, f1.Content)

	env.flush(t)
	calls := env.remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, &library.NodePatch{Content: strPtr("# Edited"), Version: 2}, calls[0].Patch)
}

func TestImportBatch(t *testing.T) {
	env := newTestEnv(t, fixtureTree())
	env.remote.fail["create:n2"] = true

	ids := env.store.ImportBatch([]ImportItem{
		{Name: "Reading list.md", Content: "- Dune"},
		{},
		{Name: "Budget", Kind: library.KindGoogleSheet, ExternalRef: "https://docs.google.com/spreadsheets/d/1"},
	})
	require.Equal(t, []string{"n1", "n2", "n3"}, ids)

	fs := env.store.Snapshot()
	checkWellFormed(t, fs)
	assert.Equal(t, []string{"F1", "F2", "n1", "n2", "n3"}, fs.Root().Children)
	assert.Equal(t, "- Dune", *fs["n1"].Content)
	assert.Equal(t, DefaultImportName, fs["n2"].Name)
	assert.Equal(t, library.KindMarkdown, fs["n2"].Kind)
	assert.Equal(t, library.KindGoogleSheet, fs["n3"].Kind)

	// A failed create does not stop the others
	env.flush(t)
	assert.Equal(t, []string{"create n1", "create n2", "create n3"}, env.remote.OpsAndIDs())
	assert.Contains(t, env.store.Snapshot(), "n2")
}

func TestImportBatch_Empty(t *testing.T) {
	env := newTestEnv(t, fixtureTree())
	assert.Nil(t, env.store.ImportBatch(nil))
}

func TestFailingRemote_KeepsLocalState(t *testing.T) {
	env := newTestEnv(t, fixtureTree())
	for _, op := range []string{"create", "update", "delete"} {
		env.remote.fail[op] = true
	}

	id, ok := env.store.CreateNode("F2", library.KindMarkdown, "draft.md")
	require.True(t, ok)
	require.True(t, env.store.RenameNode(id, "final.md"))
	require.True(t, env.store.MoveNode(context.Background(), id, "F1"))
	require.True(t, env.store.DeleteNode("D1"))
	env.flush(t)

	fs := env.store.Snapshot()
	checkWellFormed(t, fs)
	assert.Equal(t, []string{id}, fs["F1"].Children)
	assert.Equal(t, "final.md", fs[id].Name)
	assert.Equal(t, []string{"create n1", "update n1", "update n1", "delete D1"}, env.remote.OpsAndIDs())
}

func TestSelectionAndOpen(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	assert.False(t, env.store.Select("ghost"))
	assert.True(t, env.store.Select("F2"))
	assert.Equal(t, "F2", env.store.Selected())

	require.True(t, env.store.Open("F1"))
	f1, _ := env.store.Node("F1")
	assert.True(t, f1.Expanded)
	assert.Empty(t, env.store.OpenDocument())

	require.True(t, env.store.ToggleExpanded("F1"))
	f1, _ = env.store.Node("F1")
	assert.False(t, f1.Expanded)
	assert.False(t, env.store.ToggleExpanded("D1"))

	require.True(t, env.store.Open("D1"))
	assert.Equal(t, "D1", env.store.OpenDocument())

	// UI state never reaches the remote
	env.flush(t)
	assert.Empty(t, env.remote.Calls())
}

func TestSubscribe(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	var seen []int
	unsubscribe := env.store.Subscribe(func(fs library.FileSystem) {
		seen = append(seen, len(fs))
	})

	env.store.CreateNode("F1", library.KindMarkdown, "a.md")
	env.store.DeleteNode("ghost")
	env.store.CreateNode("F1", library.KindMarkdown, "b.md")
	unsubscribe()
	env.store.CreateNode("F1", library.KindMarkdown, "c.md")

	assert.Equal(t, []int{5, 6}, seen)
}

func TestLoad(t *testing.T) {
	env := newTestEnv(t, fixtureTree())
	env.remote.tree = library.BuildFileSystem([]*library.Node{
		node(library.RootID, "", library.KindFolder, "My Library"),
		node("F2", library.RootID, library.KindFolder, "F2"),
	})
	require.True(t, env.store.Open("D1"))
	env.store.CreateNode("F2", library.KindMarkdown, "pending.md")

	require.NoError(t, env.store.Load(context.Background()))

	// Queued writes go out before the reload
	assert.Equal(t, []string{"create n1", "load "}, env.remote.OpsAndIDs())
	assert.Len(t, env.store.Snapshot(), 2)
	assert.Empty(t, env.store.OpenDocument())
	assert.Empty(t, env.store.Selected())
}

func TestLoad_Errors(t *testing.T) {
	env := newTestEnv(t, fixtureTree())

	env.remote.fail["load"] = true
	assert.ErrorIs(t, env.store.Load(context.Background()), errRemoteDown)

	env.remote.fail["load"] = false
	env.remote.tree = library.FileSystem{}
	assert.Error(t, env.store.Load(context.Background()))

	assert.Len(t, env.store.Snapshot(), 4)
}

func TestOfflineStore(t *testing.T) {
	s := New(Options{Logger: testLogger(), Initial: fixtureTree()})
	defer s.Close(context.Background())

	_, ok := s.CreateNode("F1", library.KindMarkdown, "offline.md")
	assert.True(t, ok)
	assert.Error(t, s.Load(context.Background()))

	// Without a Confirmer every overwrite is declined
	require.True(t, s.RenameNode("D1", "F2"))
	assert.False(t, s.MoveNode(context.Background(), "D1", library.RootID))
}
