package treestore

import (
	"context"
	"errors"

	"sanctum/internal/domain/models/library"
)

// Remote persists tree changes. Calls are issued by the dispatcher in the
// order the local transitions committed.
type Remote interface {
	// LoadAll returns the full mapping with folder children derived
	LoadAll(ctx context.Context) (library.FileSystem, error)
	CreateNode(ctx context.Context, node *library.Node) error
	UpdateNode(ctx context.Context, id string, patch *library.NodePatch) error
	// DeleteNode deletes id; the remote cascades to descendants on its own
	DeleteNode(ctx context.Context, id string) error
}

// Uploader stores a binary file and returns a durable URL for it
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Confirmer asks the user a yes/no question before a destructive overwrite
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Listener receives the mapping after every committed transition. The
// mapping is shared and must not be modified.
type Listener func(fs library.FileSystem)

var (
	// ErrNoUploader is returned when a PDF is uploaded without an Uploader
	ErrNoUploader = errors.New("no upload side-channel configured")

	// ErrInvalidParent is returned by UploadFile when the target is not a folder
	ErrInvalidParent = errors.New("upload target is not a folder")

	// ErrFolderNameTaken is returned by UploadFile when the name belongs to a
	// folder, which a file can never overwrite
	ErrFolderNameTaken = errors.New("a folder with that name already exists")

	errNoRemote = errors.New("no remote configured")
)

// offlineRemote keeps everything local
type offlineRemote struct{}

func (offlineRemote) LoadAll(context.Context) (library.FileSystem, error) {
	return nil, errNoRemote
}

func (offlineRemote) CreateNode(context.Context, *library.Node) error { return nil }

func (offlineRemote) UpdateNode(context.Context, string, *library.NodePatch) error { return nil }

func (offlineRemote) DeleteNode(context.Context, string) error { return nil }

type declineAll struct{}

func (declineAll) Confirm(context.Context, string) bool { return false }
