package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sanctum/internal/domain"
	models "sanctum/internal/domain/models/library"
	"sanctum/internal/domain/repositories"
	libraryRepo "sanctum/internal/domain/repositories/library"
	librarySvc "sanctum/internal/domain/services/library"

	"github.com/google/uuid"
)

// nodeService implements the NodeService interface
type nodeService struct {
	nodeRepo  libraryRepo.NodeRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewNodeService creates a new node service
func NewNodeService(
	nodeRepo libraryRepo.NodeRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) librarySvc.NodeService {
	return &nodeService{
		nodeRepo:  nodeRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// ListFileSystem loads every row and derives folder children
func (s *nodeService) ListFileSystem(ctx context.Context) (models.FileSystem, error) {
	nodes, err := s.nodeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return models.BuildFileSystem(nodes), nil
}

// CreateNode validates and stores a new node under an existing folder
func (s *nodeService) CreateNode(ctx context.Context, req *librarySvc.CreateNodeRequest) (*models.Node, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	node := &models.Node{
		ID:          req.ID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		Kind:        req.Type,
		Content:     req.Content,
		ExternalRef: req.URL,
		Version:     req.Version,
		ModifiedAt:  time.Now(),
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if req.LastModified > 0 {
		node.ModifiedAt = time.UnixMilli(req.LastModified)
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.requireFolder(txCtx, *node.ParentID); err != nil {
			return err
		}
		return s.nodeRepo.Create(txCtx, node)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("node created",
		"node_id", node.ID,
		"parent_id", *node.ParentID,
		"type", node.Kind,
	)
	return node, nil
}

// UpdateNode applies a partial update. Moves are checked against the
// ancestry of the target so a folder never ends up inside itself.
func (s *nodeService) UpdateNode(ctx context.Context, id string, patch *models.NodePatch) (*models.Node, error) {
	if err := validatePatch(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var updated *models.Node
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if patch.ParentID != nil {
			if id == models.RootID {
				return fmt.Errorf("%w: the root folder cannot be moved", domain.ErrValidation)
			}
			if err := s.requireFolder(txCtx, *patch.ParentID); err != nil {
				return err
			}
			if err := s.checkNotDescendant(txCtx, id, *patch.ParentID); err != nil {
				return err
			}
		}

		existing, err := s.nodeRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		// A stale patch is left for the repository to reject as stale
		if patch.Version == 0 || patch.Version > existing.Version {
			if err := checkPayload(existing.Kind, patch); err != nil {
				return err
			}
		}

		if err := s.nodeRepo.Update(txCtx, id, patch, time.Now()); err != nil {
			return err
		}

		node, err := s.nodeRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		updated = node
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStale) {
			s.logger.Warn("stale write rejected", "node_id", id, "version", patch.Version)
		}
		return nil, err
	}

	return updated, nil
}

// DeleteNode removes a node and everything beneath it
func (s *nodeService) DeleteNode(ctx context.Context, id string) (int64, error) {
	if id == models.RootID {
		return 0, fmt.Errorf("%w: the root folder cannot be deleted", domain.ErrValidation)
	}

	removed, err := s.nodeRepo.DeleteSubtree(ctx, id)
	if err != nil {
		return 0, err
	}

	s.logger.Info("node deleted", "node_id", id, "removed", removed)
	return removed, nil
}

// EnsureRoot creates the root folder with starter content when it is missing
func (s *nodeService) EnsureRoot(ctx context.Context) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		_, err := s.nodeRepo.GetByID(txCtx, models.RootID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		now := time.Now()
		for _, node := range seedNodes(now) {
			if err := s.nodeRepo.Create(txCtx, node); err != nil {
				return fmt.Errorf("seed %s: %w", node.ID, err)
			}
		}

		s.logger.Info("seeded library root")
		return nil
	})
}

func seedNodes(now time.Time) []*models.Node {
	root := models.RootID
	welcome := "# Welcome\n\nThis is your library. Create folders and documents from the tree, or import them from files and Notion."
	return []*models.Node{
		{ID: root, Name: "My Library", Kind: models.KindFolder, ModifiedAt: now},
		{ID: "folder-1", ParentID: &root, Name: "Classics", Kind: models.KindFolder, ModifiedAt: now},
		{ID: "file-welcome", ParentID: &root, Name: "Library Guide.md", Kind: models.KindMarkdown, Content: &welcome, ModifiedAt: now},
	}
}

// requireFolder returns a validation error unless id names an existing folder
func (s *nodeService) requireFolder(ctx context.Context, id string) error {
	parent, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: parent %s does not exist", domain.ErrValidation, id)
		}
		return err
	}
	if !parent.IsFolder() {
		return fmt.Errorf("%w: parent %s is not a folder", domain.ErrValidation, id)
	}
	return nil
}

// checkNotDescendant walks up from targetID and fails if it meets id
func (s *nodeService) checkNotDescendant(ctx context.Context, id, targetID string) error {
	seen := make(map[string]bool)
	cur := targetID
	for {
		if cur == id {
			return fmt.Errorf("%w: cannot move %s into its own subtree", domain.ErrValidation, id)
		}
		if seen[cur] {
			return nil
		}
		seen[cur] = true

		node, err := s.nodeRepo.GetByID(ctx, cur)
		if err != nil {
			return err
		}
		if node.ParentID == nil {
			return nil
		}
		cur = *node.ParentID
	}
}
