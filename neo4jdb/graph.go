// Package neo4jdb stores the meeting graph in Neo4j.
package neo4jdb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/siherrmann/meetgraph/core/graph"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
)

var schema = []string{
	"CREATE CONSTRAINT meeting_id IF NOT EXISTS FOR (m:Meeting) REQUIRE m.id IS UNIQUE",
	"CREATE CONSTRAINT discussion_point_id IF NOT EXISTS FOR (d:DiscussionPoint) REQUIRE d.id IS UNIQUE",
	"CREATE CONSTRAINT person_name IF NOT EXISTS FOR (p:Person) REQUIRE p.name IS UNIQUE",
	"CREATE CONSTRAINT topic_name IF NOT EXISTS FOR (t:Topic) REQUIRE t.name IS UNIQUE",
}

// Graph is the meeting graph stored in Neo4j. Every call opens its own
// session on the driver's connection pool.
type Graph struct {
	driver   neo4j.DriverWithContext
	database string
	log      *slog.Logger
}

var _ graph.Store = (*Graph)(nil)

// NewGraph connects to Neo4j, verifies the connection with a test query and
// creates the uniqueness constraints.
func NewGraph(ctx context.Context, config helper.Neo4jConfiguration, logger *slog.Logger) (*Graph, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "neo4j")

	auth := neo4j.NoAuth()
	if config.Username != "" {
		auth = neo4j.BasicAuth(config.Username, config.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, auth)
	if err != nil {
		logger.Error("Error creating neo4j driver", slog.String("error", err.Error()))
		return nil, helper.NewError("create driver", err)
	}

	g := &Graph{
		driver:   driver,
		database: config.Database,
		log:      logger,
	}

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		logger.Error("Error connecting to neo4j", slog.String("uri", config.URI), slog.String("error", err.Error()))
		_ = driver.Close(ctx)
		return nil, helper.NewError("verify connectivity", err)
	}

	records, _, err := g.run(ctx, neo4j.AccessModeRead, "RETURN 1 AS num", nil)
	if err != nil || len(records) != 1 || intFromRecord(records[0], "num") != 1 {
		if err == nil {
			err = fmt.Errorf("unexpected test query result")
		}
		logger.Error("Error running neo4j test query", slog.String("error", err.Error()))
		_ = driver.Close(ctx)
		return nil, helper.NewError("test query", err)
	}

	for _, statement := range schema {
		_, _, err := g.run(ctx, neo4j.AccessModeWrite, statement, nil)
		if err != nil {
			_ = driver.Close(ctx)
			return nil, helper.NewError("create constraint", err)
		}
	}

	logger.Info("Connected to neo4j", slog.String("uri", config.URI))
	return g, nil
}

func (g *Graph) run(ctx context.Context, mode neo4j.AccessMode, query string, params map[string]any) ([]*neo4j.Record, neo4j.ResultSummary, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: g.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, nil, err
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, nil, err
	}

	summary, err := result.Consume(ctx)
	if err != nil {
		return nil, nil, err
	}
	return records, summary, nil
}

func (g *Graph) CreateMeeting(ctx context.Context, title string, date *string) (uuid.UUID, error) {
	records, _, err := g.run(ctx, neo4j.AccessModeWrite, `
		CREATE (m:Meeting {id: randomUUID(), title: $title, date: $date, created_at: timestamp()})
		RETURN m.id AS id`,
		map[string]any{"title": title, "date": nullable(date)},
	)
	if err != nil {
		return uuid.Nil, helper.NewError("create meeting", err)
	}
	if len(records) == 0 {
		return uuid.Nil, helper.NewError("create meeting", fmt.Errorf("no meeting returned"))
	}

	id, err := uuidFromRecord(records[0], "id")
	if err != nil {
		return uuid.Nil, helper.NewError("parse meeting id", err)
	}
	return id, nil
}

func (g *Graph) CreateDiscussionPoint(ctx context.Context, meetingID uuid.UUID, content string, timestamp *string, speaker *string) (uuid.UUID, error) {
	records, _, err := g.run(ctx, neo4j.AccessModeWrite, `
		MATCH (m:Meeting {id: $meeting_id})
		CREATE (d:DiscussionPoint {
			id: randomUUID(),
			content: $content,
			timestamp: $timestamp,
			offset: $offset,
			speaker: $speaker,
			created_at: timestamp()
		})
		CREATE (m)-[:HAS_POINT]->(d)
		RETURN d.id AS id`,
		map[string]any{
			"meeting_id": meetingID.String(),
			"content":    content,
			"timestamp":  nullable(timestamp),
			"offset":     nullable(model.ClockOffset(timestamp)),
			"speaker":    nullable(speaker),
		},
	)
	if err != nil {
		return uuid.Nil, helper.NewError("create discussion point", err)
	}
	if len(records) == 0 {
		return uuid.Nil, helper.NewError("create discussion point", fmt.Errorf("%w: %s", model.ErrMeetingNotFound, meetingID))
	}

	id, err := uuidFromRecord(records[0], "id")
	if err != nil {
		return uuid.Nil, helper.NewError("parse discussion point id", err)
	}
	return id, nil
}

func (g *Graph) MergePerson(ctx context.Context, name string) error {
	_, _, err := g.run(ctx, neo4j.AccessModeWrite, "MERGE (p:Person {name: $name})", map[string]any{"name": name})
	if err != nil {
		return helper.NewError("merge person", err)
	}
	return nil
}

func (g *Graph) MergeTopic(ctx context.Context, name string) error {
	_, _, err := g.run(ctx, neo4j.AccessModeWrite, "MERGE (t:Topic {name: $name})", map[string]any{"name": name})
	if err != nil {
		return helper.NewError("merge topic", err)
	}
	return nil
}

// LinkPerson creates a relationship of the normalized type. The type is
// checked against the identifier pattern before it is placed in the query.
func (g *Graph) LinkPerson(ctx context.Context, personName string, pointID uuid.UUID, relationType model.RelationType) error {
	normalized, err := model.NormalizeRelationType(string(relationType))
	if err != nil {
		return helper.NewError("link person", err)
	}

	query := fmt.Sprintf(`
		MATCH (p:Person {name: $name}), (d:DiscussionPoint {id: $point_id})
		CREATE (p)-[:%s]->(d)`, normalized)
	return g.link(ctx, query, personName, pointID)
}

func (g *Graph) LinkTopic(ctx context.Context, topicName string, pointID uuid.UUID) error {
	return g.link(ctx, `
		MATCH (t:Topic {name: $name}), (d:DiscussionPoint {id: $point_id})
		CREATE (t)-[:DISCUSSED_IN]->(d)`, topicName, pointID)
}

func (g *Graph) link(ctx context.Context, query string, name string, pointID uuid.UUID) error {
	_, summary, err := g.run(ctx, neo4j.AccessModeWrite, query, map[string]any{
		"name":     name,
		"point_id": pointID.String(),
	})
	if err != nil {
		return helper.NewError("create relationship", err)
	}
	if summary.Counters().RelationshipsCreated() == 0 {
		return helper.NewError("create relationship", fmt.Errorf("%w: %s -> %s", model.ErrEndpointNotFound, name, pointID))
	}
	return nil
}

func (g *Graph) Clear(ctx context.Context) error {
	_, _, err := g.run(ctx, neo4j.AccessModeWrite, `
		MATCH (n)
		WHERE n:Meeting OR n:DiscussionPoint OR n:Person OR n:Topic
		DETACH DELETE n`, nil)
	if err != nil {
		return helper.NewError("clear graph", err)
	}
	g.log.Info("Cleared meeting graph")
	return nil
}

// MeetingTimeline returns the points of a meeting by clock offset. Nulls
// sort last in ascending Cypher order.
func (g *Graph) MeetingTimeline(ctx context.Context, meetingID uuid.UUID) ([]*model.TimelineEntry, error) {
	records, _, err := g.run(ctx, neo4j.AccessModeRead, `
		MATCH (m:Meeting {id: $meeting_id})-[:HAS_POINT]->(d:DiscussionPoint)
		RETURN d.timestamp AS timestamp, d.content AS content, d.speaker AS speaker
		ORDER BY d.offset, d.timestamp, d.created_at`,
		map[string]any{"meeting_id": meetingID.String()},
	)
	if err != nil {
		return nil, helper.NewError("query timeline", err)
	}

	entries := make([]*model.TimelineEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, &model.TimelineEntry{
			Timestamp: stringPtrFromRecord(record, "timestamp"),
			Content:   stringFromRecord(record, "content"),
			Speaker:   stringPtrFromRecord(record, "speaker"),
		})
	}
	return entries, nil
}

func (g *Graph) PersonActivities(ctx context.Context, personName string) ([]*model.PersonActivity, error) {
	records, _, err := g.run(ctx, neo4j.AccessModeRead, `
		MATCH (p:Person {name: $name})-[r]->(d:DiscussionPoint)<-[:HAS_POINT]-(m:Meeting)
		RETURN type(r) AS relationship, m.title AS title, m.date AS date,
			d.timestamp AS timestamp, d.content AS content
		ORDER BY m.date IS NULL, m.date DESC, d.offset, d.timestamp`,
		map[string]any{"name": personName},
	)
	if err != nil {
		return nil, helper.NewError("query person activities", err)
	}

	activities := make([]*model.PersonActivity, 0, len(records))
	for _, record := range records {
		activities = append(activities, &model.PersonActivity{
			Relationship: model.RelationType(stringFromRecord(record, "relationship")),
			MeetingTitle: stringFromRecord(record, "title"),
			MeetingDate:  stringPtrFromRecord(record, "date"),
			Timestamp:    stringPtrFromRecord(record, "timestamp"),
			Content:      stringFromRecord(record, "content"),
		})
	}
	return activities, nil
}

// SearchDiscussions matches lower-cased content against the keywords and
// collects topics, people and the earlier points of the same meeting.
func (g *Graph) SearchDiscussions(ctx context.Context, keywords []string) ([]*model.DiscussionContext, error) {
	results := []*model.DiscussionContext{}
	keywords = graph.NormalizeKeywords(keywords)
	if len(keywords) == 0 {
		return results, nil
	}

	records, _, err := g.run(ctx, neo4j.AccessModeRead, `
		MATCH (m:Meeting)-[:HAS_POINT]->(d:DiscussionPoint)
		WHERE ANY(k IN $keywords WHERE toLower(d.content) CONTAINS k)
		OPTIONAL MATCH (t:Topic)-[:DISCUSSED_IN]->(d)
		WITH m, d, collect(DISTINCT t.name) AS topics
		OPTIONAL MATCH (p:Person)-->(d)
		WITH m, d, topics, collect(DISTINCT p.name) AS people
		OPTIONAL MATCH (m)-[:HAS_POINT]->(a:DiscussionPoint)
		WHERE a.offset < d.offset
		WITH m, d, topics, people, a
		ORDER BY a.offset
		WITH m, d, topics, people, collect(a.content) AS prior_context
		RETURN d.id AS id, d.timestamp AS timestamp, d.content AS content,
			m.title AS meeting_title, topics, people, prior_context
		ORDER BY d.offset, d.timestamp, d.created_at`,
		map[string]any{"keywords": keywords},
	)
	if err != nil {
		return nil, helper.NewError("search discussions", err)
	}

	for _, record := range records {
		id, err := uuidFromRecord(record, "id")
		if err != nil {
			return nil, helper.NewError("parse discussion point id", err)
		}

		result := &model.DiscussionContext{
			ID:           id,
			Timestamp:    stringPtrFromRecord(record, "timestamp"),
			Content:      stringFromRecord(record, "content"),
			MeetingTitle: stringFromRecord(record, "meeting_title"),
			Topics:       stringSliceFromRecord(record, "topics"),
			People:       stringSliceFromRecord(record, "people"),
			PriorContext: stringSliceFromRecord(record, "prior_context"),
		}
		sort.Strings(result.Topics)
		sort.Strings(result.People)
		results = append(results, result)
	}
	return results, nil
}

func (g *Graph) ActionItems(ctx context.Context) ([]*model.ActionItem, error) {
	records, _, err := g.run(ctx, neo4j.AccessModeRead, `
		MATCH (m:Meeting)-[:HAS_POINT]->(d:DiscussionPoint)
		WHERE d.timestamp = $sentinel
		RETURN m.title AS meeting_title, d.content AS content
		ORDER BY m.date IS NULL, m.date DESC, m.created_at DESC, d.created_at`,
		map[string]any{"sentinel": model.ActionItemTimestamp},
	)
	if err != nil {
		return nil, helper.NewError("query action items", err)
	}

	items := make([]*model.ActionItem, 0, len(records))
	for _, record := range records {
		items = append(items, &model.ActionItem{
			MeetingTitle: stringFromRecord(record, "meeting_title"),
			Content:      stringFromRecord(record, "content"),
		})
	}
	return items, nil
}

func (g *Graph) CountNodes(ctx context.Context, label model.Label) (int, error) {
	switch label {
	case model.LabelMeeting, model.LabelDiscussionPoint, model.LabelPerson, model.LabelTopic:
	default:
		return 0, helper.NewError("count nodes", fmt.Errorf("%w: %s", model.ErrInvalidLabel, label))
	}

	records, _, err := g.run(ctx, neo4j.AccessModeRead, fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", label), nil)
	if err != nil {
		return 0, helper.NewError("count nodes", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return intFromRecord(records[0], "count"), nil
}

func (g *Graph) CountRelationships(ctx context.Context, relationType model.RelationType) (int, error) {
	normalized, err := model.NormalizeRelationType(string(relationType))
	if err != nil {
		return 0, helper.NewError("count relationships", err)
	}

	records, _, err := g.run(ctx, neo4j.AccessModeRead, fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS count", normalized), nil)
	if err != nil {
		return 0, helper.NewError("count relationships", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return intFromRecord(records[0], "count"), nil
}

func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}
