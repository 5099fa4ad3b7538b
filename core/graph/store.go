package graph

import (
	"context"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/model"
)

// Writer defines the graph writes done while ingesting a transcript.
// Every call stands alone; there is no transaction across calls.
type Writer interface {
	CreateMeeting(ctx context.Context, title string, date *string) (uuid.UUID, error)
	CreateDiscussionPoint(ctx context.Context, meetingID uuid.UUID, content string, timestamp *string, speaker *string) (uuid.UUID, error)
	MergePerson(ctx context.Context, name string) error
	MergeTopic(ctx context.Context, name string) error
	LinkPerson(ctx context.Context, personName string, pointID uuid.UUID, relationType model.RelationType) error
	LinkTopic(ctx context.Context, topicName string, pointID uuid.UUID) error
	Clear(ctx context.Context) error
}

// Reader defines the graph queries.
type Reader interface {
	MeetingTimeline(ctx context.Context, meetingID uuid.UUID) ([]*model.TimelineEntry, error)
	PersonActivities(ctx context.Context, personName string) ([]*model.PersonActivity, error)
	SearchDiscussions(ctx context.Context, keywords []string) ([]*model.DiscussionContext, error)
	ActionItems(ctx context.Context) ([]*model.ActionItem, error)
	CountNodes(ctx context.Context, label model.Label) (int, error)
	CountRelationships(ctx context.Context, relationType model.RelationType) (int, error)
}

// Store is a meeting graph backend.
type Store interface {
	Writer
	Reader
	Close(ctx context.Context) error
}
