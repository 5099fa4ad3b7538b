package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	loadSql "github.com/siherrmann/meetgraph/sql"
)

// EdgesDBHandlerFunctions defines the interface for Edges database operations.
type EdgesDBHandlerFunctions interface {
	InsertEdge(ctx context.Context, entityName string, label model.Label, pointID uuid.UUID, relationType model.RelationType) (*model.Edge, error)
	SelectEdgesToDiscussionPoint(ctx context.Context, pointID uuid.UUID) ([]*model.Edge, error)
	CountEdges(ctx context.Context, relationType model.RelationType) (int, error)
	DeleteEdge(ctx context.Context, id uuid.UUID) error
}

// EdgesDBHandler handles person and topic relationships to discussion points
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new edges database handler.
// The entities and discussion_points tables must exist.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEdgesDBHandler(db *helper.Database, force bool) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	err = edgesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// CreateTable creates the 'edges' table in the database.
// If the table already exists, it does not create it again.
func (h *EdgesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_edges();`)
	if err != nil {
		return fmt.Errorf("error initializing edges table: %w", err)
	}

	h.db.Logger.Info("Checked/created table edges")

	return nil
}

// InsertEdge links the named entity to a discussion point. It returns
// ErrEndpointNotFound when the entity or the point does not exist.
func (h *EdgesDBHandler) InsertEdge(ctx context.Context, entityName string, label model.Label, pointID uuid.UUID, relationType model.RelationType) (*model.Edge, error) {
	edge := &model.Edge{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_edge($1, $2, $3, $4)`,
		entityName,
		string(label),
		pointID,
		string(relationType),
	)

	err := row.Scan(
		&edge.ID,
		&edge.EntityID,
		&edge.DiscussionPointID,
		&edge.RelationType,
		&edge.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("insert edge", fmt.Errorf("%w: %s %q to %s", model.ErrEndpointNotFound, label, entityName, pointID))
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return edge, nil
}

// SelectEdgesToDiscussionPoint retrieves all edges ending at a discussion point
func (h *EdgesDBHandler) SelectEdgesToDiscussionPoint(ctx context.Context, pointID uuid.UUID) ([]*model.Edge, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_edges_to_discussion_point($1)`, pointID)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var edges []*model.Edge
	for rows.Next() {
		edge := &model.Edge{}
		err := rows.Scan(
			&edge.ID,
			&edge.EntityID,
			&edge.DiscussionPointID,
			&edge.RelationType,
			&edge.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return edges, nil
}

// CountEdges returns the number of edges of a relationship type
func (h *EdgesDBHandler) CountEdges(ctx context.Context, relationType model.RelationType) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_edges($1)`, string(relationType)).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteEdge deletes an edge by id
func (h *EdgesDBHandler) DeleteEdge(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_edge($1)`, id)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
