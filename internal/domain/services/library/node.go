package library

import (
	"context"

	models "sanctum/internal/domain/models/library"
)

// NodeService is the server side of the library tree
type NodeService interface {
	// ListFileSystem returns the whole tree with children derived from parent links
	ListFileSystem(ctx context.Context) (models.FileSystem, error)

	// CreateNode stores a new node. The id is generated when the request has none.
	CreateNode(ctx context.Context, req *CreateNodeRequest) (*models.Node, error)

	// UpdateNode applies a partial update and returns the stored node
	UpdateNode(ctx context.Context, id string, patch *models.NodePatch) (*models.Node, error)

	// DeleteNode removes the node and its subtree, returning the number of rows removed
	DeleteNode(ctx context.Context, id string) (int64, error)

	// EnsureRoot seeds the root folder and welcome content on an empty store
	EnsureRoot(ctx context.Context) error
}

// CreateNodeRequest is the full record posted by clients
type CreateNodeRequest struct {
	ID           string      `json:"id"`
	ParentID     *string     `json:"parentId"`
	Name         string      `json:"name"`
	Type         models.Kind `json:"type"`
	Content      *string     `json:"content,omitempty"`
	URL          *string     `json:"url,omitempty"`
	LastModified int64       `json:"lastModified,omitempty"`
	Version      int64       `json:"version,omitempty"`
}
