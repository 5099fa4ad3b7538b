package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/core/graph"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	loadSql "github.com/siherrmann/meetgraph/sql"
)

// Graph is the meeting graph stored in PostgreSQL tables.
type Graph struct {
	DB               *helper.Database
	Meetings         *MeetingsDBHandler
	DiscussionPoints *DiscussionPointsDBHandler
	Entities         *EntitiesDBHandler
	Edges            *EdgesDBHandler
}

var _ graph.Store = (*Graph)(nil)

// NewGraph creates all handlers in dependency order. If force is true the
// SQL functions are reloaded.
func NewGraph(db *helper.Database, force bool) (*Graph, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	meetings, err := NewMeetingsDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create meetings handler", err)
	}

	points, err := NewDiscussionPointsDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create discussion points handler", err)
	}

	entities, err := NewEntitiesDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	edges, err := NewEdgesDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	return &Graph{
		DB:               db,
		Meetings:         meetings,
		DiscussionPoints: points,
		Entities:         entities,
		Edges:            edges,
	}, nil
}

func (g *Graph) CreateMeeting(ctx context.Context, title string, date *string) (uuid.UUID, error) {
	meeting := &model.Meeting{Title: title, Date: date}
	if err := g.Meetings.InsertMeeting(ctx, meeting); err != nil {
		return uuid.Nil, err
	}
	return meeting.ID, nil
}

func (g *Graph) CreateDiscussionPoint(ctx context.Context, meetingID uuid.UUID, content string, timestamp *string, speaker *string) (uuid.UUID, error) {
	point := model.NewDiscussionPoint(meetingID, content, timestamp, speaker)
	if err := g.DiscussionPoints.InsertDiscussionPoint(ctx, point); err != nil {
		return uuid.Nil, err
	}
	return point.ID, nil
}

func (g *Graph) MergePerson(ctx context.Context, name string) error {
	_, err := g.Entities.MergeEntity(ctx, name, model.LabelPerson)
	return err
}

func (g *Graph) MergeTopic(ctx context.Context, name string) error {
	_, err := g.Entities.MergeEntity(ctx, name, model.LabelTopic)
	return err
}

func (g *Graph) LinkPerson(ctx context.Context, personName string, pointID uuid.UUID, relationType model.RelationType) error {
	normalized, err := model.NormalizeRelationType(string(relationType))
	if err != nil {
		return helper.NewError("link person", err)
	}
	_, err = g.Edges.InsertEdge(ctx, personName, model.LabelPerson, pointID, normalized)
	return err
}

func (g *Graph) LinkTopic(ctx context.Context, topicName string, pointID uuid.UUID) error {
	_, err := g.Edges.InsertEdge(ctx, topicName, model.LabelTopic, pointID, model.RelationDiscussedIn)
	return err
}

func (g *Graph) Clear(ctx context.Context) error {
	return g.Meetings.ClearGraph(ctx)
}

func (g *Graph) MeetingTimeline(ctx context.Context, meetingID uuid.UUID) ([]*model.TimelineEntry, error) {
	return g.DiscussionPoints.SelectMeetingTimeline(ctx, meetingID)
}

func (g *Graph) PersonActivities(ctx context.Context, personName string) ([]*model.PersonActivity, error) {
	return g.Entities.SelectPersonActivities(ctx, personName)
}

func (g *Graph) SearchDiscussions(ctx context.Context, keywords []string) ([]*model.DiscussionContext, error) {
	return g.DiscussionPoints.SearchDiscussionPoints(ctx, graph.NormalizeKeywords(keywords))
}

func (g *Graph) ActionItems(ctx context.Context) ([]*model.ActionItem, error) {
	return g.DiscussionPoints.SelectActionItems(ctx)
}

func (g *Graph) CountNodes(ctx context.Context, label model.Label) (int, error) {
	switch label {
	case model.LabelMeeting:
		return g.Meetings.CountMeetings(ctx)
	case model.LabelDiscussionPoint:
		return g.DiscussionPoints.CountDiscussionPoints(ctx)
	case model.LabelPerson, model.LabelTopic:
		return g.Entities.CountEntities(ctx, label)
	default:
		return 0, helper.NewError("count nodes", fmt.Errorf("%w: %s", model.ErrInvalidLabel, label))
	}
}

// CountRelationships counts HAS_POINT through the discussion point foreign
// key and every other type through the edges table.
func (g *Graph) CountRelationships(ctx context.Context, relationType model.RelationType) (int, error) {
	if relationType == model.RelationHasPoint {
		return g.DiscussionPoints.CountDiscussionPoints(ctx)
	}
	return g.Edges.CountEdges(ctx, relationType)
}

func (g *Graph) Close(ctx context.Context) error {
	return g.DB.Close()
}
