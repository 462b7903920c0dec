package treestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctum/internal/domain/models/library"
)

var fixedNow = time.UnixMilli(1_750_000_000_000)

type remoteCall struct {
	Op    string
	ID    string
	Node  *library.Node
	Patch *library.NodePatch
}

// fakeRemote records every call; ops listed in fail return errRemoteDown
type fakeRemote struct {
	mu    sync.Mutex
	calls []remoteCall
	fail  map[string]bool
	tree  library.FileSystem
	block chan struct{}
}

var errRemoteDown = errors.New("remote down")

func newFakeRemote() *fakeRemote {
	return &fakeRemote{fail: map[string]bool{}}
}

func (r *fakeRemote) record(ctx context.Context, c remoteCall) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if r.fail[c.Op] || r.fail[c.Op+":"+c.ID] {
		return errRemoteDown
	}
	return nil
}

func (r *fakeRemote) LoadAll(ctx context.Context) (library.FileSystem, error) {
	if err := r.record(ctx, remoteCall{Op: "load"}); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree, nil
}

func (r *fakeRemote) CreateNode(ctx context.Context, node *library.Node) error {
	return r.record(ctx, remoteCall{Op: "create", ID: node.ID, Node: node})
}

func (r *fakeRemote) UpdateNode(ctx context.Context, id string, patch *library.NodePatch) error {
	return r.record(ctx, remoteCall{Op: "update", ID: id, Patch: patch})
}

func (r *fakeRemote) DeleteNode(ctx context.Context, id string) error {
	return r.record(ctx, remoteCall{Op: "delete", ID: id})
}

func (r *fakeRemote) Calls() []remoteCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]remoteCall(nil), r.calls...)
}

func (r *fakeRemote) OpsAndIDs() []string {
	var out []string
	for _, c := range r.Calls() {
		out = append(out, c.Op+" "+c.ID)
	}
	return out
}

type fakeUploader struct {
	url   string
	err   error
	calls []string
}

func (u *fakeUploader) Upload(_ context.Context, filename string, _ []byte) (string, error) {
	u.calls = append(u.calls, filename)
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

// recordingConfirmer answers with answer and remembers the prompts
type recordingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *recordingConfirmer) Confirm(_ context.Context, prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func node(id, parent string, kind library.Kind, name string) *library.Node {
	n := &library.Node{ID: id, Name: name, Kind: kind, ModifiedAt: time.UnixMilli(1), Version: 1}
	if parent != "" {
		n.ParentID = strPtr(parent)
	}
	if kind.HasContent() {
		n.Content = strPtr("text of " + name)
	}
	if kind.HasExternalRef() {
		n.ExternalRef = strPtr("https://example.com/" + id)
	}
	return n
}

// fixtureTree is:
//
//	root
//	├── F1/
//	│   └── D1 notes.md
//	└── F2/
func fixtureTree() library.FileSystem {
	return library.BuildFileSystem([]*library.Node{
		node(library.RootID, "", library.KindFolder, "My Library"),
		node("F1", library.RootID, library.KindFolder, "F1"),
		node("D1", "F1", library.KindMarkdown, "notes.md"),
		node("F2", library.RootID, library.KindFolder, "F2"),
	})
}

type testEnv struct {
	store     *Store
	remote    *fakeRemote
	uploader  *fakeUploader
	confirmer *recordingConfirmer
}

func newTestEnv(t *testing.T, fs library.FileSystem) *testEnv {
	t.Helper()
	env := &testEnv{
		remote:    newFakeRemote(),
		uploader:  &fakeUploader{url: "https://files.example.com/doc.pdf"},
		confirmer: &recordingConfirmer{answer: true},
	}
	seq := 0
	env.store = New(Options{
		Remote:    env.remote,
		Uploader:  env.uploader,
		Confirmer: env.confirmer,
		Logger:    testLogger(),
		Initial:   fs,
		Now:       func() time.Time { return fixedNow },
		NewID: func() string {
			seq++
			return fmt.Sprintf("n%d", seq)
		},
	})
	t.Cleanup(func() { env.store.Close(context.Background()) })
	return env
}

func (e *testEnv) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.Flush(context.Background()))
}

// checkWellFormed asserts the structural invariants of a tree
func checkWellFormed(t *testing.T, fs library.FileSystem) {
	t.Helper()

	root := fs.Root()
	require.NotNil(t, root, "tree has no root")
	assert.Nil(t, root.ParentID, "root has a parent")
	assert.True(t, root.IsFolder(), "root is not a folder")

	for id, n := range fs {
		assert.Equal(t, id, n.ID)
		assert.True(t, n.Kind.Valid(), "node %s has kind %q", id, n.Kind)
		assert.Equal(t, n.Kind.HasContent(), n.Content != nil, "content presence on %s", id)
		assert.Equal(t, n.Kind.HasExternalRef(), n.ExternalRef != nil, "url presence on %s", id)
		if !n.IsFolder() {
			assert.Nil(t, n.Children, "non-folder %s has children", id)
		}

		if id == library.RootID {
			continue
		}
		require.NotNil(t, n.ParentID, "node %s has no parent", id)
		parent, ok := fs[*n.ParentID]
		require.True(t, ok, "parent of %s missing", id)
		assert.True(t, parent.IsFolder(), "parent of %s is not a folder", id)

		count := 0
		for _, c := range parent.Children {
			if c == id {
				count++
			}
		}
		assert.Equal(t, 1, count, "node %s listed %d times by its parent", id, count)
	}

	for _, n := range fs {
		for _, c := range n.Children {
			child, ok := fs[c]
			require.True(t, ok, "folder %s lists missing child %s", n.ID, c)
			require.NotNil(t, child.ParentID)
			assert.Equal(t, n.ID, *child.ParentID)
		}
	}

	reachable := append(fs.Descendants(library.RootID), library.RootID)
	assert.Len(t, reachable, len(fs), "unreachable nodes in tree")
}
