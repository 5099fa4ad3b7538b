package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/siherrmann/meetgraph/core/ingest"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/database"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
)

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(ctx)

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "meetgraph",
		Username: "meetgraph",
		Password: "meetgraph",
		Schema:   "public",
		SSLMode:  "disable",
	}

	logger := helper.NewLogger(slog.LevelInfo)
	db, err := helper.NewDatabase("example", dbConfig, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	g, err := database.NewGraph(db, false)
	if err != nil {
		log.Fatalf("Failed to create graph: %v", err)
	}
	defer g.Close(ctx)

	agent := ingest.NewAgent(g, pipeline.SeedPolicy(), logger)
	meetingID, err := agent.Seed(ctx)
	if err != nil {
		log.Fatalf("Failed to load the sample meeting: %v", err)
	}

	fmt.Printf("Meeting %s\n\nTimeline:\n", meetingID)
	timeline, err := g.MeetingTimeline(ctx, meetingID)
	if err != nil {
		log.Fatalf("Failed to query timeline: %v", err)
	}
	for _, entry := range timeline {
		fmt.Printf("  [%s] %s\n", *entry.Timestamp, entry.Content)
	}

	fmt.Println("\nActivities of Rajat:")
	activities, err := g.PersonActivities(ctx, "Rajat")
	if err != nil {
		log.Fatalf("Failed to query activities: %v", err)
	}
	for _, activity := range activities {
		fmt.Printf("  %s: %s\n", activity.Relationship, activity.Content)
	}

	for _, label := range []model.Label{model.LabelMeeting, model.LabelDiscussionPoint, model.LabelPerson, model.LabelTopic} {
		count, err := g.CountNodes(ctx, label)
		if err != nil {
			log.Fatalf("Failed to count %s nodes: %v", label, err)
		}
		fmt.Printf("%s nodes: %d\n", label, count)
	}
}
