package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/siherrmann/meetgraph/core/graph/mock"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countNodes(t *testing.T, store *mock.Store, label model.Label) int {
	count, err := store.CountNodes(context.Background(), label)
	require.NoError(t, err)
	return count
}

func countRelationships(t *testing.T, store *mock.Store, relationType model.RelationType) int {
	count, err := store.CountRelationships(context.Background(), relationType)
	require.NoError(t, err)
	return count
}

func TestProcessMeetingNotes(t *testing.T) {
	ctx := context.Background()

	t.Run("Seed policy builds meeting graph", func(t *testing.T) {
		store := mock.NewStore()
		agent := NewAgent(store, pipeline.SeedPolicy(), nil)

		date := "2024-12-08"
		meetingID, err := agent.ProcessMeetingNotes(ctx, "Sync", &date, "4:19 Dr. Sonia spoke about Neo4j.\n- Action: follow up")
		require.NoError(t, err, "Expected ProcessMeetingNotes to not return an error")

		assert.Equal(t, 1, countNodes(t, store, model.LabelMeeting))
		assert.Equal(t, 2, countNodes(t, store, model.LabelDiscussionPoint))
		assert.Equal(t, 1, countNodes(t, store, model.LabelPerson))
		assert.Equal(t, 1, countNodes(t, store, model.LabelTopic))
		assert.Equal(t, 2, countRelationships(t, store, model.RelationHasPoint))
		assert.Equal(t, 1, countRelationships(t, store, model.RelationMentionedIn))
		assert.Equal(t, 1, countRelationships(t, store, model.RelationDiscussedIn))

		timeline, err := agent.MeetingTimeline(ctx, meetingID)
		require.NoError(t, err)
		require.Len(t, timeline, 2)
		assert.Equal(t, "4:19", *timeline[0].Timestamp)
		assert.Equal(t, "Dr. Sonia spoke about Neo4j.", timeline[0].Content)
		assert.Equal(t, model.ActionItemTimestamp, *timeline[1].Timestamp)

		activities, err := agent.PersonActivities(ctx, "Dr. Sonia")
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, model.RelationMentionedIn, activities[0].Relationship)
		assert.Equal(t, "Sync", activities[0].MeetingTitle)
	})

	t.Run("Re-ingesting duplicates meetings and points but not entities", func(t *testing.T) {
		store := mock.NewStore()
		agent := NewAgent(store, pipeline.SeedPolicy(), nil)
		notes := "4:19 Dr. Sonia spoke about Neo4j.\n6:16 Rajat joined."

		_, err := agent.ProcessMeetingNotes(ctx, "Sync", nil, notes)
		require.NoError(t, err)
		_, err = agent.ProcessMeetingNotes(ctx, "Sync", nil, notes)
		require.NoError(t, err)

		assert.Equal(t, 2, countNodes(t, store, model.LabelMeeting))
		assert.Equal(t, 4, countNodes(t, store, model.LabelDiscussionPoint))
		assert.Equal(t, 2, countNodes(t, store, model.LabelPerson))
		assert.Equal(t, 1, countNodes(t, store, model.LabelTopic))
	})

	t.Run("Custom relationship type", func(t *testing.T) {
		store := mock.NewStore()
		policy := pipeline.GeneralPolicy()
		policy.RelationType = "PRESENTED"
		agent := NewAgent(store, policy, nil)

		_, err := agent.ProcessMeetingNotes(ctx, "Review", nil, "Maria presented the API 9:50")
		require.NoError(t, err)

		assert.Equal(t, 1, countRelationships(t, store, "PRESENTED"))
		assert.Equal(t, 0, countRelationships(t, store, model.RelationMentionedIn))
	})

	t.Run("Store error aborts ingestion", func(t *testing.T) {
		store := mock.NewStore()
		store.FailOn["LinkTopic"] = errors.New("connection reset")
		agent := NewAgent(store, pipeline.SeedPolicy(), nil)

		_, err := agent.ProcessMeetingNotes(ctx, "Sync", nil, "4:19 Neo4j setup\n6:16 Rajat joined")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Equal(t, 1, countNodes(t, store, model.LabelDiscussionPoint), "Expected no rollback and no further lines")
	})

	t.Run("Meeting creation error", func(t *testing.T) {
		store := mock.NewStore()
		store.FailOn["CreateMeeting"] = errors.New("unavailable")
		agent := NewAgent(store, pipeline.GeneralPolicy(), nil)

		_, err := agent.ProcessMeetingNotes(ctx, "Sync", nil, "text")
		assert.Error(t, err)
		assert.Equal(t, 0, countNodes(t, store, model.LabelDiscussionPoint))
	})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	agent := NewAgent(store, pipeline.GeneralPolicy(), nil)

	_, err := agent.ProcessMeetingNotes(ctx, "Old", nil, "leftover line")
	require.NoError(t, err)

	meetingID, err := agent.Seed(ctx)
	require.NoError(t, err, "Expected Seed to not return an error")

	assert.Equal(t, 1, countNodes(t, store, model.LabelMeeting), "Expected the graph to be cleared first")
	assert.Equal(t, 17, countNodes(t, store, model.LabelDiscussionPoint))
	assert.Equal(t, 4, countNodes(t, store, model.LabelPerson))
	assert.Equal(t, 6, countNodes(t, store, model.LabelTopic))

	timeline, err := agent.MeetingTimeline(ctx, meetingID)
	require.NoError(t, err)
	require.Len(t, timeline, 17)
	assert.Equal(t, "4:19", *timeline[0].Timestamp)
	assert.Equal(t, "28:37", *timeline[11].Timestamp)

	items, err := store.ActionItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, SampleMeetingTitle, items[0].MeetingTitle)
	assert.Equal(t, "- Set up individual Neo4j accounts for prototyping", items[0].Content)

	activities, err := agent.PersonActivities(ctx, "Rajat")
	require.NoError(t, err)
	assert.Len(t, activities, 3)
}
