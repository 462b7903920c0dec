package library

import (
	"context"
	"time"

	models "sanctum/internal/domain/models/library"
)

// NodeRepository defines data access operations for library nodes.
// All nodes live in a single table; children are never stored.
type NodeRepository interface {
	// EnsureSchema creates the backing table if it does not exist
	EnsureSchema(ctx context.Context) error

	// ListAll returns every node in insertion order (reparented nodes count as re-inserted)
	ListAll(ctx context.Context) ([]*models.Node, error)

	// GetByID retrieves a single node
	GetByID(ctx context.Context, id string) (*models.Node, error)

	// Create inserts a node. Returns a ConflictError if the id is taken.
	Create(ctx context.Context, node *models.Node) error

	// Update applies the non-nil fields of patch and stamps modifiedAt.
	// When patch.Version > 0 the write is rejected with a StaleWriteError
	// unless it is newer than the stored version.
	Update(ctx context.Context, id string, patch *models.NodePatch, modifiedAt time.Time) error

	// DeleteSubtree deletes the node and all of its descendants.
	// Returns the number of rows removed.
	DeleteSubtree(ctx context.Context, id string) (int64, error)
}
