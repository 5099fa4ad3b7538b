package neo4jdb

import (
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func stringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// stringPtrFromRecord returns nil for missing and null values.
func stringPtrFromRecord(record *neo4j.Record, key string) *string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	str, ok := val.(string)
	if !ok {
		return nil
	}
	return &str
}

func intFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}

func stringSliceFromRecord(record *neo4j.Record, key string) []string {
	result := []string{}
	val, ok := record.Get(key)
	if !ok || val == nil {
		return result
	}
	items, ok := val.([]interface{})
	if !ok {
		return result
	}
	for _, item := range items {
		if str, ok := item.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

func uuidFromRecord(record *neo4j.Record, key string) (uuid.UUID, error) {
	return uuid.Parse(stringFromRecord(record, key))
}

// nullable turns a nil pointer into an untyped nil so the driver stores null.
func nullable[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}
