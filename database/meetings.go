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

// MeetingsDBHandlerFunctions defines the interface for Meetings database operations.
type MeetingsDBHandlerFunctions interface {
	InsertMeeting(ctx context.Context, meeting *model.Meeting) error
	SelectMeeting(ctx context.Context, id uuid.UUID) (*model.Meeting, error)
	SelectAllMeetings(ctx context.Context) ([]*model.Meeting, error)
	CountMeetings(ctx context.Context) (int, error)
	DeleteMeeting(ctx context.Context, id uuid.UUID) error
	ClearGraph(ctx context.Context) error
}

// MeetingsDBHandler handles meeting-related database operations
type MeetingsDBHandler struct {
	db *helper.Database
}

// NewMeetingsDBHandler creates a new meetings database handler.
// It loads the meeting SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewMeetingsDBHandler(db *helper.Database, force bool) (*MeetingsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	meetingsDbHandler := &MeetingsDBHandler{
		db: db,
	}

	err := sql.LoadMeetingsSql(meetingsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load meetings sql", err)
	}

	err = meetingsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized MeetingsDBHandler")

	return meetingsDbHandler, nil
}

// CreateTable creates the 'meetings' table in the database.
// If the table already exists, it does not create it again.
func (h *MeetingsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_meetings();`)
	if err != nil {
		return fmt.Errorf("error initializing meetings table: %w", err)
	}

	h.db.Logger.Info("Checked/created table meetings")

	return nil
}

// InsertMeeting inserts a new meeting and fills its id and creation time.
func (h *MeetingsDBHandler) InsertMeeting(ctx context.Context, meeting *model.Meeting) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_meeting($1, $2)`,
		meeting.Title,
		meeting.Date,
	)

	err := row.Scan(
		&meeting.ID,
		&meeting.Title,
		&meeting.Date,
		&meeting.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectMeeting retrieves a meeting by id
func (h *MeetingsDBHandler) SelectMeeting(ctx context.Context, id uuid.UUID) (*model.Meeting, error) {
	meeting := &model.Meeting{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_meeting($1)`,
		id,
	)

	err := row.Scan(
		&meeting.ID,
		&meeting.Title,
		&meeting.Date,
		&meeting.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return meeting, nil
}

// SelectAllMeetings retrieves all meetings, newest meeting date first
func (h *MeetingsDBHandler) SelectAllMeetings(ctx context.Context) ([]*model.Meeting, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_meetings()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var meetings []*model.Meeting
	for rows.Next() {
		meeting := &model.Meeting{}
		err := rows.Scan(
			&meeting.ID,
			&meeting.Title,
			&meeting.Date,
			&meeting.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		meetings = append(meetings, meeting)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return meetings, nil
}

// CountMeetings returns the number of meetings
func (h *MeetingsDBHandler) CountMeetings(ctx context.Context) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_meetings()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteMeeting deletes a meeting and, by cascade, its discussion points
func (h *MeetingsDBHandler) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_meeting($1)`, id)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// ClearGraph removes all meetings, discussion points, entities and edges.
func (h *MeetingsDBHandler) ClearGraph(ctx context.Context) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT clear_meeting_graph()`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
