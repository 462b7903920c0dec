package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sanctum/internal/domain"
	models "sanctum/internal/domain/models/library"
	libraryRepo "sanctum/internal/domain/repositories/library"

	"sanctum/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const nodeColumns = "id, parent_id, name, type, content, url, version, last_modified"

// PostgresNodeRepository implements the NodeRepository interface
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *postgres.RepositoryConfig) libraryRepo.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// EnsureSchema creates the files table and its parent index
func (r *PostgresNodeRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            TEXT PRIMARY KEY,
				parent_id     TEXT,
				name          TEXT NOT NULL,
				type          TEXT NOT NULL,
				content       TEXT,
				url           TEXT,
				version       BIGINT NOT NULL DEFAULT 0,
				sort_key      BIGINT NOT NULL,
				last_modified BIGINT NOT NULL
			)
		`, r.tables.Files),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_id_idx ON %s (parent_id)`, r.tables.Files, r.tables.Files),
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	for _, stmt := range statements {
		if _, err := executor.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ListAll returns every node ordered by insertion sequence
func (r *PostgresNodeRepository) ListAll(ctx context.Context) ([]*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY sort_key ASC`, nodeColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		if postgres.IsPgUndefinedTable(err) {
			return nil, fmt.Errorf("list nodes: table %s is missing, run EnsureSchema: %w", r.tables.Files, err)
		}
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// GetByID retrieves a node by ID
func (r *PostgresNodeRepository) GetByID(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, nodeColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}

	return node, nil
}

// Create inserts a node at the end of the insertion sequence
func (r *PostgresNodeRepository) Create(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, parent_id, name, type, content, url, version, sort_key, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, (SELECT COALESCE(MAX(sort_key), 0) + 1 FROM %s), $8)
	`, r.tables.Files, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		node.ID,
		node.ParentID,
		node.Name,
		string(node.Kind),
		node.Content,
		node.ExternalRef,
		node.Version,
		node.ModifiedAt.UnixMilli(),
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("node '%s' already exists", node.ID),
				ResourceType: "node",
				ResourceID:   node.ID,
			}
		}
		return fmt.Errorf("create node: %w", err)
	}

	return nil
}

// Update applies a partial update. Reparenting moves the node to the end of
// the insertion sequence so it is listed last among its new siblings.
func (r *PostgresNodeRepository) Update(ctx context.Context, id string, patch *models.NodePatch, modifiedAt time.Time) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
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
		sets = append(sets, fmt.Sprintf("sort_key = (SELECT COALESCE(MAX(sort_key), 0) + 1 FROM %s)", r.tables.Files))
	}
	if patch.Version > 0 {
		set("version", patch.Version)
	} else {
		sets = append(sets, "version = version + 1")
	}
	set("last_modified", modifiedAt.UnixMilli())

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if patch.Version > 0 {
		args = append(args, patch.Version)
		where += fmt.Sprintf(" AND version < $%d", len(args))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s`, r.tables.Files, strings.Join(sets, ", "), where)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update node: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or the write lost the version check
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

	return nil
}

// DeleteSubtree deletes the node and every descendant in one statement
func (r *PostgresNodeRepository) DeleteSubtree(ctx context.Context, id string) (int64, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %s WHERE id = $1
			UNION
			SELECT f.id FROM %s f JOIN subtree s ON f.parent_id = s.id
		)
		DELETE FROM %s WHERE id IN (SELECT id FROM subtree)
	`, r.tables.Files, r.tables.Files, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete subtree: %w", err)
	}

	if result.RowsAffected() == 0 {
		return 0, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Debug("deleted subtree", "node_id", id, "rows", result.RowsAffected())
	return result.RowsAffected(), nil
}

func scanNode(row pgx.Row) (*models.Node, error) {
	var node models.Node
	var kind string
	var lastModified int64
	err := row.Scan(
		&node.ID,
		&node.ParentID,
		&node.Name,
		&kind,
		&node.Content,
		&node.ExternalRef,
		&node.Version,
		&lastModified,
	)
	if err != nil {
		return nil, err
	}
	node.Kind = models.Kind(kind)
	node.ModifiedAt = time.UnixMilli(lastModified)
	return &node, nil
}
