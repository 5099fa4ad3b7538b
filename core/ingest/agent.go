package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/core/graph"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
)

// Agent turns meeting transcripts into graph writes.
type Agent struct {
	Store  graph.Store
	Policy pipeline.ExtractionPolicy
	log    *slog.Logger
}

// NewAgent creates an agent writing to store with the given policy.
func NewAgent(store graph.Store, policy pipeline.ExtractionPolicy, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		Store:  store,
		Policy: policy,
		log:    logger.With("component", "ingest"),
	}
}

// ProcessMeetingNotes creates a meeting and one discussion point per accepted
// line, then merges and links the people and topics found on that line.
// The first failing write aborts; nodes written so far are kept.
func (a *Agent) ProcessMeetingNotes(ctx context.Context, title string, date *string, notes string) (uuid.UUID, error) {
	lines, err := a.Policy.Extract(notes)
	if err != nil {
		a.log.Error("Error extracting meeting notes", slog.String("title", title), slog.String("error", err.Error()))
		return uuid.Nil, helper.NewError("extract meeting notes", err)
	}

	meetingID, err := a.Store.CreateMeeting(ctx, title, date)
	if err != nil {
		a.log.Error("Error creating meeting", slog.String("title", title), slog.String("error", err.Error()))
		return uuid.Nil, helper.NewError("create meeting", err)
	}

	for i, line := range lines {
		if err := a.processLine(ctx, meetingID, line); err != nil {
			a.log.Error("Error processing meeting notes",
				slog.String("meeting_id", meetingID.String()),
				slog.Int("line", i),
				slog.String("error", err.Error()),
			)
			return meetingID, helper.NewError(fmt.Sprintf("process line %d", i), err)
		}
	}

	a.log.Info("Processed meeting notes",
		slog.String("meeting_id", meetingID.String()),
		slog.String("title", title),
		slog.Int("discussion_points", len(lines)),
	)
	return meetingID, nil
}

func (a *Agent) processLine(ctx context.Context, meetingID uuid.UUID, line *pipeline.ExtractedLine) error {
	pointID, err := a.Store.CreateDiscussionPoint(ctx, meetingID, line.Content, line.Timestamp, nil)
	if err != nil {
		return err
	}

	relationType := a.Policy.RelationType
	if relationType == "" {
		relationType = model.RelationMentionedIn
	}

	for _, person := range line.People {
		if err := a.Store.MergePerson(ctx, person); err != nil {
			return err
		}
		if err := a.Store.LinkPerson(ctx, person, pointID, relationType); err != nil {
			return err
		}
	}

	for _, topic := range line.Topics {
		if err := a.Store.MergeTopic(ctx, topic); err != nil {
			return err
		}
		if err := a.Store.LinkTopic(ctx, topic, pointID); err != nil {
			return err
		}
	}

	return nil
}

// Seed clears the graph and ingests the sample meeting with the seed policy.
func (a *Agent) Seed(ctx context.Context) (uuid.UUID, error) {
	if err := a.Store.Clear(ctx); err != nil {
		return uuid.Nil, helper.NewError("clear graph", err)
	}

	seed := &Agent{Store: a.Store, Policy: pipeline.SeedPolicy(), log: a.log}
	date := SampleMeetingDate
	return seed.ProcessMeetingNotes(ctx, SampleMeetingTitle, &date, SampleMeetingNotes)
}

// MeetingTimeline returns the discussion points of a meeting in clock order.
func (a *Agent) MeetingTimeline(ctx context.Context, meetingID uuid.UUID) ([]*model.TimelineEntry, error) {
	entries, err := a.Store.MeetingTimeline(ctx, meetingID)
	if err != nil {
		return nil, helper.NewError("query meeting timeline", err)
	}
	return entries, nil
}

// PersonActivities returns the discussion points linked to a person.
func (a *Agent) PersonActivities(ctx context.Context, personName string) ([]*model.PersonActivity, error) {
	activities, err := a.Store.PersonActivities(ctx, personName)
	if err != nil {
		return nil, helper.NewError("query person activities", err)
	}
	return activities, nil
}
