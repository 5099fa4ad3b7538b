package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	"github.com/siherrmann/meetgraph/sql"
)

// pgNoDataFound is raised by insert_discussion_point for an unknown meeting.
const pgNoDataFound = "P0002"

// DiscussionPointsDBHandlerFunctions defines the interface for DiscussionPoints database operations.
type DiscussionPointsDBHandlerFunctions interface {
	InsertDiscussionPoint(ctx context.Context, point *model.DiscussionPoint) error
	SelectMeetingTimeline(ctx context.Context, meetingID uuid.UUID) ([]*model.TimelineEntry, error)
	SelectActionItems(ctx context.Context) ([]*model.ActionItem, error)
	SearchDiscussionPoints(ctx context.Context, keywords []string) ([]*model.DiscussionContext, error)
	CountDiscussionPoints(ctx context.Context) (int, error)
}

// DiscussionPointsDBHandler handles discussion point database operations
type DiscussionPointsDBHandler struct {
	db *helper.Database
}

// NewDiscussionPointsDBHandler creates a new discussion points database handler.
// The meetings table must exist.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDiscussionPointsDBHandler(db *helper.Database, force bool) (*DiscussionPointsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	discussionPointsDbHandler := &DiscussionPointsDBHandler{
		db: db,
	}

	err := sql.LoadDiscussionPointsSql(discussionPointsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load discussion points sql", err)
	}

	err = discussionPointsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DiscussionPointsDBHandler")

	return discussionPointsDbHandler, nil
}

// CreateTable creates the 'discussion_points' table in the database.
// If the table already exists, it does not create it again.
func (h *DiscussionPointsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_discussion_points();`)
	if err != nil {
		return fmt.Errorf("error initializing discussion_points table: %w", err)
	}

	h.db.Logger.Info("Checked/created table discussion_points")

	return nil
}

// InsertDiscussionPoint inserts a discussion point of an existing meeting.
// The clock offset is derived from the timestamp when not set.
func (h *DiscussionPointsDBHandler) InsertDiscussionPoint(ctx context.Context, point *model.DiscussionPoint) error {
	if point.Offset == nil {
		point.Offset = model.ClockOffset(point.Timestamp)
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_discussion_point($1, $2, $3, $4, $5)`,
		point.MeetingID,
		point.Content,
		point.Timestamp,
		point.Offset,
		point.Speaker,
	)

	err := row.Scan(
		&point.ID,
		&point.MeetingID,
		&point.Content,
		&point.Timestamp,
		&point.Offset,
		&point.Speaker,
		&point.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgNoDataFound {
			return helper.NewError("insert discussion point", fmt.Errorf("%w: %s", model.ErrMeetingNotFound, point.MeetingID))
		}
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectMeetingTimeline retrieves the discussion points of a meeting in clock order
func (h *DiscussionPointsDBHandler) SelectMeetingTimeline(ctx context.Context, meetingID uuid.UUID) ([]*model.TimelineEntry, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_meeting_timeline($1)`, meetingID)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	entries := []*model.TimelineEntry{}
	for rows.Next() {
		entry := &model.TimelineEntry{}
		err := rows.Scan(
			&entry.Timestamp,
			&entry.Content,
			&entry.Speaker,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entries, nil
}

// SelectActionItems retrieves all action items with their meeting title
func (h *DiscussionPointsDBHandler) SelectActionItems(ctx context.Context) ([]*model.ActionItem, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_action_items($1)`, model.ActionItemTimestamp)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	items := []*model.ActionItem{}
	for rows.Next() {
		item := &model.ActionItem{}
		err := rows.Scan(
			&item.MeetingTitle,
			&item.Content,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		items = append(items, item)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return items, nil
}

// SearchDiscussionPoints retrieves discussion points containing any keyword
// together with their topics, people and earlier points of the same meeting.
func (h *DiscussionPointsDBHandler) SearchDiscussionPoints(ctx context.Context, keywords []string) ([]*model.DiscussionContext, error) {
	results := []*model.DiscussionContext{}
	if len(keywords) == 0 {
		return results, nil
	}

	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM search_discussion_points($1)`, pq.Array(keywords))
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		result := &model.DiscussionContext{}
		err := rows.Scan(
			&result.ID,
			&result.Timestamp,
			&result.Content,
			&result.MeetingTitle,
			pq.Array(&result.Topics),
			pq.Array(&result.People),
			pq.Array(&result.PriorContext),
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, result)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// CountDiscussionPoints returns the number of discussion points
func (h *DiscussionPointsDBHandler) CountDiscussionPoints(ctx context.Context) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_discussion_points()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
