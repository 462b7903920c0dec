// Package treestore owns the in-memory library tree. Every mutation commits
// locally at once and is then propagated to a Remote in issuance order;
// remote failures are logged and never roll local state back.
package treestore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sanctum/internal/domain/models/library"
)

// DefaultMarkdownContent is the starter text of a new document
const DefaultMarkdownContent = "# New Document\n\nStart writing here."

// Options configures a Store. Only Logger is required.
type Options struct {
	Remote    Remote
	Uploader  Uploader
	Confirmer Confirmer
	Logger    *slog.Logger

	// Initial seeds the mapping before the first Load
	Initial library.FileSystem

	// CallTimeout bounds each remote call. Zero means 30 seconds.
	CallTimeout time.Duration

	Now   func() time.Time
	NewID func() string
}

// Store is the authoritative tree. All methods are safe for concurrent use;
// transitions are serialized and listeners run after the lock is released.
type Store struct {
	mu        sync.Mutex
	fs        library.FileSystem
	selected  string
	openDoc   string
	listeners map[int]Listener
	nextSub   int

	remote    Remote
	uploader  Uploader
	confirmer Confirmer
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	dispatch  *dispatcher
}

// New creates a store and starts its dispatcher. Call Close when done.
func New(opts Options) *Store {
	s := &Store{
		fs:        opts.Initial,
		listeners: make(map[int]Listener),
		remote:    opts.Remote,
		uploader:  opts.Uploader,
		confirmer: opts.Confirmer,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.fs == nil {
		s.fs = library.FileSystem{}
	}
	if s.remote == nil {
		s.remote = offlineRemote{}
	}
	if s.confirmer == nil {
		s.confirmer = declineAll{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	timeout := opts.CallTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	s.dispatch = newDispatcher(s.logger, timeout)
	return s
}

// Load replaces the mapping with the remote's. Queued writes are flushed first
// so the reload reflects them. This is the only reconciliation there is.
func (s *Store) Load(ctx context.Context) error {
	if err := s.dispatch.flush(ctx); err != nil {
		return err
	}

	fs, err := s.remote.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}
	if fs.Root() == nil {
		return fmt.Errorf("load tree: remote returned no root")
	}

	s.transition(func(t *txn) bool {
		t.fs = fs
		if _, ok := fs[t.selected]; !ok {
			t.selected = ""
		}
		if _, ok := fs[t.openDoc]; !ok {
			t.openDoc = ""
		}
		return true
	})

	s.logger.Debug("tree loaded", "nodes", len(fs))
	return nil
}

// Snapshot returns the current mapping. It is never mutated after being
// published, so it may be read without locking but must not be modified.
func (s *Store) Snapshot() library.FileSystem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs
}

// Node returns a copy of one node
func (s *Store) Node(id string) (*library.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.fs[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Subscribe registers fn for every committed transition and returns a
// function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Selected returns the selected node id, or "" when nothing is selected
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// OpenDocument returns the id of the open document, or "" when none is open
func (s *Store) OpenDocument() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openDoc
}

// Select marks id as selected
func (s *Store) Select(id string) bool {
	return s.transition(func(t *txn) bool {
		if _, ok := t.fs[id]; !ok {
			return false
		}
		t.selected = id
		return true
	})
}

// Open opens a document, or toggles a folder open or closed.
func (s *Store) Open(id string) bool {
	return s.transition(func(t *txn) bool {
		n, ok := t.fs[id]
		if !ok {
			return false
		}
		t.selected = id
		if n.IsFolder() {
			t.edit(id).Expanded = !n.Expanded
			return true
		}
		t.openDoc = id
		return true
	})
}

// ToggleExpanded flips a folder's expanded flag. It is UI state only and is
// never sent to the remote.
func (s *Store) ToggleExpanded(id string) bool {
	return s.transition(func(t *txn) bool {
		n, ok := t.fs[id]
		if !ok || !n.IsFolder() {
			return false
		}
		t.edit(id).Expanded = !n.Expanded
		return true
	})
}

// Flush blocks until every remote call issued so far has finished
func (s *Store) Flush(ctx context.Context) error {
	return s.dispatch.flush(ctx)
}

// Close drains queued remote calls and stops the dispatcher. Calls still
// queued when ctx ends are dropped.
func (s *Store) Close(ctx context.Context) error {
	return s.dispatch.close(ctx)
}

// transition runs fn against a private copy of the state. When fn returns
// true the copy is published, its remote calls are queued in order, and
// listeners are notified.
func (s *Store) transition(fn func(t *txn) bool) bool {
	s.mu.Lock()
	t := &txn{
		fs:       s.fs.Clone(),
		selected: s.selected,
		openDoc:  s.openDoc,
		now:      s.now(),
		copied:   make(map[string]bool),
	}
	if !fn(t) {
		s.mu.Unlock()
		return false
	}

	s.fs = t.fs
	s.selected = t.selected
	s.openDoc = t.openDoc
	for _, c := range t.calls {
		s.dispatch.enqueue(c)
	}

	fs := s.fs
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(fs)
	}
	return true
}

// txn is one in-progress transition
type txn struct {
	fs       library.FileSystem
	selected string
	openDoc  string
	now      time.Time
	copied   map[string]bool
	calls    []call
}

// edit returns a private copy of id that may be modified. Published nodes
// are never written to.
func (t *txn) edit(id string) *library.Node {
	n := t.fs[id]
	if !t.copied[id] {
		n = n.Clone()
		t.fs[id] = n
		t.copied[id] = true
	}
	return n
}

// touch marks a node's own fields as changed
func (t *txn) touch(n *library.Node) {
	n.ModifiedAt = t.now
	n.Version++
}

// insert adds a node built in this transaction and links it under its parent
func (t *txn) insert(n *library.Node) {
	t.fs[n.ID] = n
	t.copied[n.ID] = true
	parent := t.edit(*n.ParentID)
	parent.Children = append(parent.Children, n.ID)
}

// unlink removes id from its parent's children
func (t *txn) unlink(id string) {
	n := t.fs[id]
	if n == nil || n.ParentID == nil {
		return
	}
	if _, ok := t.fs[*n.ParentID]; !ok {
		return
	}
	parent := t.edit(*n.ParentID)
	kept := make([]string, 0, len(parent.Children))
	for _, c := range parent.Children {
		if c != id {
			kept = append(kept, c)
		}
	}
	parent.Children = kept
}

// removeSubtree unlinks id and deletes it with every descendant, clearing
// selection and the open document when they pointed inside the subtree.
func (t *txn) removeSubtree(id string) {
	t.unlink(id)

	doomed := append(t.fs.Descendants(id), id)
	for _, d := range doomed {
		delete(t.fs, d)
		delete(t.copied, d)
		if t.openDoc == d {
			t.openDoc = ""
		}
		if t.selected == d {
			t.selected = ""
		}
	}
}

// remote queues a call to run after the transition commits
func (t *txn) remote(op, nodeID string, fn func(ctx context.Context) error) {
	t.calls = append(t.calls, call{op: op, nodeID: nodeID, fn: fn})
}
