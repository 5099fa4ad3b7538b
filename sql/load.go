package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed meetings.sql
var meetingsSQL string

//go:embed discussion_points.sql
var discussionPointsSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed edges.sql
var edgesSQL string

//go:embed vectors.sql
var vectorsSQL string

// Function lists for verification
var MeetingsFunctions = []string{
	"init_meetings",
	"insert_meeting",
	"select_meeting",
	"select_all_meetings",
	"count_meetings",
	"delete_meeting",
	"clear_meeting_graph",
}

var DiscussionPointsFunctions = []string{
	"init_discussion_points",
	"insert_discussion_point",
	"select_meeting_timeline",
	"select_action_items",
	"search_discussion_points",
	"count_discussion_points",
}

var EntitiesFunctions = []string{
	"init_entities",
	"merge_entity",
	"select_entity_by_name",
	"select_entities_by_type",
	"count_entities",
	"delete_entity",
	"select_person_activities",
}

var EdgesFunctions = []string{
	"init_edges",
	"insert_edge",
	"select_edges_to_discussion_point",
	"count_edges",
	"delete_edge",
}

var VectorsFunctions = []string{
	"init_vectors",
	"create_vector_index",
	"drop_vector_index",
	"vector_index_exists",
	"vector_index_ready",
	"select_vector_index",
	"upsert_vector",
	"query_vectors",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadMeetingsSql loads meeting-related SQL functions
func LoadMeetingsSql(db *sql.DB, force bool) error {
	return loadSql(db, "meetings", meetingsSQL, MeetingsFunctions, force)
}

// LoadDiscussionPointsSql loads discussion point SQL functions
func LoadDiscussionPointsSql(db *sql.DB, force bool) error {
	return loadSql(db, "discussion points", discussionPointsSQL, DiscussionPointsFunctions, force)
}

// LoadEntitiesSql loads person and topic SQL functions
func LoadEntitiesSql(db *sql.DB, force bool) error {
	return loadSql(db, "entities", entitiesSQL, EntitiesFunctions, force)
}

// LoadEdgesSql loads edge-related SQL functions
func LoadEdgesSql(db *sql.DB, force bool) error {
	return loadSql(db, "edges", edgesSQL, EdgesFunctions, force)
}

// LoadVectorsSql loads the vector index SQL functions
func LoadVectorsSql(db *sql.DB, force bool) error {
	return loadSql(db, "vectors", vectorsSQL, VectorsFunctions, force)
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	loaders := []func(*sql.DB, bool) error{
		LoadMeetingsSql,
		LoadDiscussionPointsSql,
		LoadEntitiesSql,
		LoadEdgesSql,
		LoadVectorsSql,
	}
	for _, load := range loaders {
		if err := load(db, force); err != nil {
			return err
		}
	}
	return nil
}

func loadSql(db *sql.DB, name string, source string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(source)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required %s SQL functions were created", name)
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	if len(sqlFunctions) == 0 {
		return false, nil
	}

	for _, f := range sqlFunctions {
		var exists bool
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !exists {
			log.Printf("Function %s does not exist", f)
			return false, nil
		}
	}
	return true, nil
}
