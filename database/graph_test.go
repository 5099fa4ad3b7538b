package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/core/ingest"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphIngestion(t *testing.T) {
	ctx := context.Background()
	g := initGraph(t)
	agent := ingest.NewAgent(g, pipeline.SeedPolicy(), g.DB.Logger)

	count := func(label model.Label) int {
		n, err := g.CountNodes(ctx, label)
		require.NoError(t, err)
		return n
	}
	relationships := func(relationType model.RelationType) int {
		n, err := g.CountRelationships(ctx, relationType)
		require.NoError(t, err)
		return n
	}

	t.Run("Sample transcript", func(t *testing.T) {
		_, err := agent.ProcessMeetingNotes(ctx, "Sync", nil, "4:19 Dr. Sonia spoke about Neo4j.\n- Action: follow up")
		require.NoError(t, err, "Expected ProcessMeetingNotes to not return an error")

		assert.Equal(t, 1, count(model.LabelMeeting))
		assert.Equal(t, 2, count(model.LabelDiscussionPoint))
		assert.Equal(t, 1, count(model.LabelPerson))
		assert.Equal(t, 1, count(model.LabelTopic))
		assert.Equal(t, 2, relationships(model.RelationHasPoint))
		assert.Equal(t, 1, relationships(model.RelationMentionedIn))
		assert.Equal(t, 1, relationships(model.RelationDiscussedIn))
	})

	t.Run("Re-ingest duplicates meetings but merges entities", func(t *testing.T) {
		_, err := agent.ProcessMeetingNotes(ctx, "Sync", nil, "4:19 Dr. Sonia spoke about Neo4j.\n- Action: follow up")
		require.NoError(t, err)

		assert.Equal(t, 2, count(model.LabelMeeting))
		assert.Equal(t, 4, count(model.LabelDiscussionPoint))
		assert.Equal(t, 1, count(model.LabelPerson))
		assert.Equal(t, 1, count(model.LabelTopic))
	})

	t.Run("Seed clears and loads the sample meeting", func(t *testing.T) {
		meetingID, err := agent.Seed(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, count(model.LabelMeeting))
		assert.Equal(t, 17, count(model.LabelDiscussionPoint))

		timeline, err := g.MeetingTimeline(ctx, meetingID)
		require.NoError(t, err)
		require.Len(t, timeline, 17)
		assert.Equal(t, "4:19", *timeline[0].Timestamp)
		assert.Equal(t, "6:01", *timeline[1].Timestamp)

		items, err := g.ActionItems(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 5)
	})

	t.Run("Invalid relationship type", func(t *testing.T) {
		err := g.LinkPerson(ctx, "Rajat", uuid.New(), "not-valid")
		assert.ErrorIs(t, err, model.ErrInvalidRelationType)
	})

	t.Run("Unknown label", func(t *testing.T) {
		_, err := g.CountNodes(ctx, "Document")
		assert.ErrorIs(t, err, model.ErrInvalidLabel)
	})
}
