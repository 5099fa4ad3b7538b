package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/meetgraph/core/vector"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	loadSql "github.com/siherrmann/meetgraph/sql"
)

const maxVectorTableName = 40

var nonIdentifier = regexp.MustCompile(`[^a-z0-9_]+`)

// VectorsDBHandler is a vector index stored in its own pgvector table with
// an HNSW cosine index.
type VectorsDBHandler struct {
	db        *helper.Database
	name      string
	tableName string
}

var _ vector.Index = (*VectorsDBHandler)(nil)

// NewVectorsDBHandler creates a handler for the index with the given name.
// If force is true, it will reload the SQL functions even if they already exist.
func NewVectorsDBHandler(db *helper.Database, name string, force bool) (*VectorsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	vectorsDbHandler := &VectorsDBHandler{
		db:        db,
		name:      name,
		tableName: VectorTableName(name),
	}

	err := loadSql.LoadVectorsSql(vectorsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load vectors sql", err)
	}

	err = vectorsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized VectorsDBHandler", "index", name)

	return vectorsDbHandler, nil
}

// VectorTableName maps an index name to the name of its table.
func VectorTableName(name string) string {
	table := "vectors_" + nonIdentifier.ReplaceAllString(strings.ToLower(name), "_")
	if len(table) > maxVectorTableName {
		table = table[:maxVectorTableName]
	}
	return table
}

// CreateTable creates the 'vector_indexes' registry table.
func (h *VectorsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_vectors();`)
	if err != nil {
		return fmt.Errorf("error initializing vector_indexes table: %w", err)
	}

	h.db.Logger.Info("Checked/created table vector_indexes")

	return nil
}

func (h *VectorsDBHandler) Name() string {
	return h.name
}

func (h *VectorsDBHandler) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := h.db.Instance.QueryRowContext(ctx, `SELECT vector_index_exists($1)`, h.name).Scan(&exists)
	if err != nil {
		return false, helper.NewError("scan", err)
	}
	return exists, nil
}

func (h *VectorsDBHandler) Create(ctx context.Context, dimension int) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT create_vector_index($1, $2, $3)`, h.name, h.tableName, dimension)
	if err != nil {
		return helper.NewError("exec", err)
	}

	h.db.Logger.Info("Created hnsw index", "table", h.tableName, "dimension", dimension)
	return nil
}

func (h *VectorsDBHandler) Delete(ctx context.Context) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT drop_vector_index($1)`, h.name)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func (h *VectorsDBHandler) Ready(ctx context.Context) (bool, error) {
	var ready bool
	err := h.db.Instance.QueryRowContext(ctx, `SELECT vector_index_ready($1)`, h.name).Scan(&ready)
	if err != nil {
		return false, helper.NewError("scan", err)
	}
	return ready, nil
}

// Upsert writes one batch in a single transaction.
func (h *VectorsDBHandler) Upsert(ctx context.Context, records []model.VectorRecord) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		metadata, err := json.Marshal(record.Metadata)
		if err != nil {
			return helper.NewError("marshal metadata", err)
		}

		_, err = tx.ExecContext(
			ctx,
			`SELECT upsert_vector($1, $2, $3, $4)`,
			h.tableName,
			record.ID,
			pgvector.NewVector(record.Values),
			string(metadata),
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("upsert vector %s", record.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit", err)
	}
	return nil
}

func (h *VectorsDBHandler) Query(ctx context.Context, values []float32, topK int) ([]model.VectorMatch, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM query_vectors($1, $2, $3)`,
		h.tableName,
		pgvector.NewVector(values),
		topK,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	matches := []model.VectorMatch{}
	for rows.Next() {
		var match model.VectorMatch
		var metadata []byte
		err := rows.Scan(
			&match.ID,
			&match.Score,
			&metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		if err := json.Unmarshal(metadata, &match.Metadata); err != nil {
			return nil, helper.NewError("unmarshal metadata", err)
		}
		matches = append(matches, match)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return matches, nil
}

// Close is a no-op; the connection belongs to the shared database.
func (h *VectorsDBHandler) Close() error {
	return nil
}

// Dimension returns the dimension the index was created with.
func (h *VectorsDBHandler) Dimension(ctx context.Context) (int, error) {
	var name, table, metric string
	var dimension int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_vector_index($1)`, h.name).Scan(&name, &table, &dimension, &metric)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, helper.NewError("select vector index", fmt.Errorf("index %s does not exist", h.name))
	}
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return dimension, nil
}
