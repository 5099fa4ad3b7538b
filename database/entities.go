package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	"github.com/siherrmann/meetgraph/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	MergeEntity(ctx context.Context, name string, label model.Label) (*model.Entity, error)
	SelectEntityByName(ctx context.Context, name string, label model.Label) (*model.Entity, error)
	SelectEntitiesByType(ctx context.Context, label model.Label) ([]*model.Entity, error)
	CountEntities(ctx context.Context, label model.Label) (int, error)
	DeleteEntity(ctx context.Context, id uuid.UUID) error
	SelectPersonActivities(ctx context.Context, name string) ([]*model.PersonActivity, error)
}

// EntitiesDBHandler handles person and topic database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := sql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		return fmt.Errorf("error initializing entities table: %w", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// MergeEntity returns the entity with name and label, creating it if needed.
func (h *EntitiesDBHandler) MergeEntity(ctx context.Context, name string, label model.Label) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM merge_entity($1, $2)`,
		name,
		string(label),
	)

	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Type,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntityByName retrieves an entity by name and label
func (h *EntitiesDBHandler) SelectEntityByName(ctx context.Context, name string, label model.Label) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity_by_name($1, $2)`,
		name,
		string(label),
	)

	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Type,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesByType retrieves all entities of a label ordered by name
func (h *EntitiesDBHandler) SelectEntitiesByType(ctx context.Context, label model.Label) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_entities_by_type($1)`, string(label))
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entity.Type,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// CountEntities returns the number of entities with label
func (h *EntitiesDBHandler) CountEntities(ctx context.Context, label model.Label) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_entities($1)`, string(label)).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteEntity deletes an entity and its edges
func (h *EntitiesDBHandler) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_entity($1)`, id)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectPersonActivities retrieves the discussion points linked to a person,
// newest meeting first.
func (h *EntitiesDBHandler) SelectPersonActivities(ctx context.Context, name string) ([]*model.PersonActivity, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_person_activities($1)`, name)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	activities := []*model.PersonActivity{}
	for rows.Next() {
		activity := &model.PersonActivity{}
		err := rows.Scan(
			&activity.Relationship,
			&activity.MeetingTitle,
			&activity.MeetingDate,
			&activity.Timestamp,
			&activity.Content,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		activities = append(activities, activity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return activities, nil
}
