package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sanctum/internal/domain"
	models "sanctum/internal/domain/models/library"
	libraryRepo "sanctum/internal/domain/repositories/library"
)

const nodeColumns = "id, parent_id, name, type, content, url, version, last_modified"

// nodeRepository implements libraryRepo.NodeRepository on the files table.
type nodeRepository struct {
	store *Store
}

var _ libraryRepo.NodeRepository = (*nodeRepository)(nil)

// NewNodeRepository returns a node repository backed by the store
func NewNodeRepository(store *Store) libraryRepo.NodeRepository {
	return &nodeRepository{store: store}
}

// EnsureSchema is satisfied by the embedded migrations run in Open.
func (r *nodeRepository) EnsureSchema(ctx context.Context) error {
	var name string
	err := r.store.executor(ctx).QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'files'").Scan(&name)
	if err != nil {
		return fmt.Errorf("files table missing: %w", err)
	}
	return nil
}

func (r *nodeRepository) ListAll(ctx context.Context) ([]*models.Node, error) {
	rows, err := r.store.executor(ctx).QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM files ORDER BY sort_key ASC")
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (r *nodeRepository) GetByID(ctx context.Context, id string) (*models.Node, error) {
	row := r.store.executor(ctx).QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM files WHERE id = ?", id)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}
	return node, nil
}

func (r *nodeRepository) Create(ctx context.Context, node *models.Node) error {
	if _, err := r.GetByID(ctx, node.ID); err == nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("node '%s' already exists", node.ID),
			ResourceType: "node",
			ResourceID:   node.ID,
		}
	}

	_, err := r.store.executor(ctx).ExecContext(ctx, `
		INSERT INTO files (id, parent_id, name, type, content, url, version, sort_key, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(sort_key), 0) + 1 FROM files), ?)
	`,
		node.ID,
		nullString(node.ParentID),
		node.Name,
		string(node.Kind),
		nullString(node.Content),
		nullString(node.ExternalRef),
		node.Version,
		node.ModifiedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting node: %w", err)
	}
	return nil
}

func (r *nodeRepository) Update(ctx context.Context, id string, patch *models.NodePatch, modifiedAt time.Time) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Kind != nil {
		set("type", string(*patch.Kind))
		// A kind change drops the payload the new kind does not carry
		if !patch.Kind.HasContent() && patch.Content == nil {
			sets = append(sets, "content = NULL")
		}
		if !patch.Kind.HasExternalRef() && patch.ExternalRef == nil {
			sets = append(sets, "url = NULL")
		}
	}
	if patch.ExternalRef != nil {
		set("url", *patch.ExternalRef)
	}
	if patch.ParentID != nil {
		set("parent_id", *patch.ParentID)
		sets = append(sets, "sort_key = (SELECT COALESCE(MAX(sort_key), 0) + 1 FROM files)")
	}
	if patch.Version > 0 {
		set("version", patch.Version)
	} else {
		sets = append(sets, "version = version + 1")
	}
	set("last_modified", modifiedAt.UnixMilli())

	query := "UPDATE files SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if patch.Version > 0 {
		query += " AND version < ?"
		args = append(args, patch.Version)
	}

	result, err := r.store.executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	if affected > 0 {
		return nil
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &domain.StaleWriteError{
		NodeID:          id,
		StoredVersion:   existing.Version,
		IncomingVersion: patch.Version,
	}
}

func (r *nodeRepository) DeleteSubtree(ctx context.Context, id string) (int64, error) {
	result, err := r.store.executor(ctx).ExecContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM files WHERE id = ?
			UNION
			SELECT f.id FROM files f JOIN subtree s ON f.parent_id = s.id
		)
		DELETE FROM files WHERE id IN (SELECT id FROM subtree)
	`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting subtree: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting subtree: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*models.Node, error) {
	var (
		node         models.Node
		parentID     sql.NullString
		kind         string
		content      sql.NullString
		url          sql.NullString
		lastModified int64
	)
	if err := row.Scan(&node.ID, &parentID, &node.Name, &kind, &content, &url, &node.Version, &lastModified); err != nil {
		return nil, err
	}
	node.ParentID = stringPtr(parentID)
	node.Kind = models.Kind(kind)
	node.Content = stringPtr(content)
	node.ExternalRef = stringPtr(url)
	node.ModifiedAt = time.UnixMilli(lastModified)
	return &node, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
