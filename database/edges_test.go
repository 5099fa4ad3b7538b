package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgesNewEdgesDBHandler(t *testing.T) {
	t.Run("Invalid call NewEdgesDBHandler with nil database", func(t *testing.T) {
		_, err := NewEdgesDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating EdgesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil")
	})
}

func TestEdgesInsert(t *testing.T) {
	ctx := context.Background()
	g := initGraph(t)

	meetingID, err := g.CreateMeeting(ctx, "Project Planning", nil)
	require.NoError(t, err)
	pointID, err := g.CreateDiscussionPoint(ctx, meetingID, "Sandesh presented a detailed design", strPtr("8:51"), nil)
	require.NoError(t, err)
	_, err = g.Entities.MergeEntity(ctx, "Sandesh", model.LabelPerson)
	require.NoError(t, err)

	t.Run("Insert edge between existing endpoints", func(t *testing.T) {
		edge, err := g.Edges.InsertEdge(ctx, "Sandesh", model.LabelPerson, pointID, model.RelationMentionedIn)
		require.NoError(t, err, "Expected InsertEdge to not return an error")
		assert.NotEqual(t, uuid.Nil, edge.ID)
		assert.Equal(t, pointID, edge.DiscussionPointID)
		assert.Equal(t, model.RelationMentionedIn, edge.RelationType)

		edges, err := g.Edges.SelectEdgesToDiscussionPoint(ctx, pointID)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, edge.ID, edges[0].ID)
	})

	t.Run("Missing entity creates nothing", func(t *testing.T) {
		_, err := g.Edges.InsertEdge(ctx, "Nobody", model.LabelPerson, pointID, model.RelationMentionedIn)
		assert.ErrorIs(t, err, model.ErrEndpointNotFound)
	})

	t.Run("Missing discussion point creates nothing", func(t *testing.T) {
		_, err := g.Edges.InsertEdge(ctx, "Sandesh", model.LabelPerson, uuid.New(), model.RelationMentionedIn)
		assert.ErrorIs(t, err, model.ErrEndpointNotFound)

		count, err := g.Edges.CountEdges(ctx, model.RelationMentionedIn)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Delete edge", func(t *testing.T) {
		edges, err := g.Edges.SelectEdgesToDiscussionPoint(ctx, pointID)
		require.NoError(t, err)
		require.NotEmpty(t, edges)

		require.NoError(t, g.Edges.DeleteEdge(ctx, edges[0].ID))
		count, err := g.Edges.CountEdges(ctx, model.RelationMentionedIn)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
